// Package logging provides concrete implementations of the dataload.Logger
// interface.
//
// Available implementations:
//   - ConsoleLogger: Writes formatted messages to a writer (stderr by default)
//   - FuncLogger: Forwards messages to a printf-style sink such as testing.T.Logf
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
