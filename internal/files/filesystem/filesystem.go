package filesystem

import (
	"io"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
// This provides compatibility with the fs.FS ecosystem while maintaining
// a stable local type for our abstraction layer.
type FileInfo = fs.FileInfo

// Provider abstracts the filesystem operations the loader engines need.
// Implementations exist for the OS filesystem and for an in-memory
// filesystem used in tests.
type Provider interface {
	// ReadFile reads the whole file at the given path
	ReadFile(path string) ([]byte, error)

	// OpenFile opens the file at the given path for seekable streaming.
	// The caller owns the returned handle and must close it.
	OpenFile(path string) (io.ReadSeekCloser, error)

	// ReadDir lists the immediate children of the directory at the given
	// path, sorted lexicographically by name
	ReadDir(path string) ([]FileInfo, error)

	// Stat returns file information for the given path
	Stat(path string) (FileInfo, error)
}
