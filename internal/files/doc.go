// Package files provides file-related functionality organized into sub-packages.
//
// Sub-packages:
//   - filesystem: Filesystem abstraction interfaces and implementations (OS and in-memory)
//   - scanner: Streaming line scanner with byte-offset tracking for lazy part resolution
//   - loader: File and directory loading engines producing test parameters
//   - locate: Upward search for data directories relative to a test source file
package files
