// Package dataload defines the public contract for the dataload test-data
// loading library: the loadable entity model (resolved values and deferred
// placeholders), load attributes, read options, the pluggable reader
// protocol, error types, and the Logger interface.
//
// The types in this package carry no loading logic of their own; the
// engines under internal/files produce and populate them. Test code
// normally interacts with the root dataload package instead, which
// re-exports everything needed here.
package dataload
