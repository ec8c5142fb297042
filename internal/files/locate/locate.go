// Package locate resolves relative data paths against data loader
// directories, searching upward from the test file toward the project root.
package locate

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dataload-go/dataload/internal/files/filesystem"
	"github.com/dataload-go/dataload/pkg/dataload"
)

// Query identifies one path resolution. Queries are comparable and serve as
// cache keys: the same test file asking for the same data path resolves
// identically for the whole run.
type Query struct {
	// DirName is the data loader directory name, e.g. "test_data".
	DirName string
	// Root is the absolute directory the upward search stops at.
	Root string
	// RelPath is the file or directory path relative to a loader directory.
	RelPath string
	// SearchFrom is the absolute file or directory the search starts from.
	SearchFrom string
	// WantFile selects whether RelPath must resolve to a file or a directory.
	WantFile bool
}

// Resolver locates data paths and memoizes successful resolutions.
// Safe for concurrent use.
type Resolver struct {
	fs    filesystem.Provider
	mu    sync.Mutex
	cache map[Query]string
}

// NewResolver creates a resolver reading through the given provider, or the
// OS filesystem when nil.
func NewResolver(fs filesystem.Provider) *Resolver {
	if fs == nil {
		fs = filesystem.NewOSFileSystem()
	}
	return &Resolver{fs: fs, cache: make(map[Query]string)}
}

// Resolve finds the absolute path for the query. Starting at SearchFrom and
// walking up to Root, the first loader directory containing RelPath with the
// required kind wins. An entry of the wrong kind (a directory where a file
// is required, or vice versa) is skipped, letting an outer loader directory
// satisfy the query.
func (r *Resolver) Resolve(q Query) (string, error) {
	r.mu.Lock()
	if hit, ok := r.cache[q]; ok {
		r.mu.Unlock()
		return hit, nil
	}
	r.mu.Unlock()

	resolved, err := r.resolve(q)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.cache[q] = resolved
	r.mu.Unlock()
	return resolved, nil
}

func (r *Resolver) resolve(q Query) (string, error) {
	start := q.SearchFrom
	if info, err := r.fs.Stat(start); err == nil && !info.IsDir() {
		start = filepath.Dir(start)
	}

	var searched []string
	dir := start
	for {
		loaderDir := filepath.Join(dir, q.DirName)
		if info, err := r.fs.Stat(loaderDir); err == nil && info.IsDir() {
			searched = append(searched, loaderDir)
			target := filepath.Join(loaderDir, filepath.FromSlash(q.RelPath))
			// an entry of the wrong kind shadows nothing; keep searching
			if info, err := r.fs.Stat(target); err == nil && info.IsDir() != q.WantFile {
				return target, nil
			}
		}

		if dir == q.Root {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", &dataload.NotFoundError{
		RelPath:      q.RelPath,
		WantFile:     q.WantFile,
		DirName:      q.DirName,
		SearchedDirs: searched,
	}
}

// FindRoot walks upward from startDir to the nearest directory containing a
// go.mod file, the natural project root for the upward search.
func FindRoot(fs filesystem.Provider, startDir string) (string, error) {
	if fs == nil {
		fs = filesystem.NewOSFileSystem()
	}
	dir := startDir
	for {
		if info, err := fs.Stat(filepath.Join(dir, "go.mod")); err == nil && !info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir || strings.TrimSpace(parent) == "" {
			return "", fmt.Errorf("no go.mod found upward of %s", startDir)
		}
		dir = parent
	}
}
