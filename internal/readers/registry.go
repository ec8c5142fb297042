// Package readers maintains the file-reader registry and the built-in
// readers for structured data formats.
//
// A reader converts a raw file stream into data handed to tests. Readers are
// registered per file extension, scoped to a directory: when several scopes
// register the same extension, the scope closest to the test file wins.
// A default reader for ".json" is always present.
package readers

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dataload-go/dataload/pkg/dataload"
)

// Registration couples a reader with the read options its files require.
type Registration struct {
	Reader  dataload.Reader
	Options dataload.ReadOptions
}

// Registry stores per-extension reader registrations grouped by scope
// directory. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	scopes map[string]map[string]Registration // scope dir -> ext -> registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{scopes: make(map[string]map[string]Registration)}
}

// Register installs a reader for ext, effective for test files at or below
// scopeDir. The extension must start with a dot.
func (r *Registry) Register(scopeDir, ext string, reader dataload.Reader, opts dataload.ReadOptions) error {
	if !strings.HasPrefix(ext, ".") {
		return fmt.Errorf("file extension must start with '.': %q", ext)
	}
	if reader == nil {
		return fmt.Errorf("reader for %q must not be nil", ext)
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	scope := normalizeScope(scopeDir)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scopes[scope] == nil {
		r.scopes[scope] = make(map[string]Registration)
	}
	r.scopes[scope][ext] = Registration{Reader: reader, Options: opts}
	return nil
}

// Unregister removes the registration for ext at scopeDir, if any.
func (r *Registry) Unregister(scopeDir, ext string) {
	scope := normalizeScope(scopeDir)

	r.mu.Lock()
	defer r.mu.Unlock()
	if exts, ok := r.scopes[scope]; ok {
		delete(exts, ext)
		if len(exts) == 0 {
			delete(r.scopes, scope)
		}
	}
}

// Lookup resolves the reader effective for a file with the given extension
// located at searchFrom. The deepest registering scope containing searchFrom
// wins; built-in defaults apply when no scope matches.
func (r *Registry) Lookup(searchFrom, ext string) (Registration, bool) {
	from := normalizeScope(searchFrom)

	r.mu.RLock()
	scopes := make([]string, 0, len(r.scopes))
	for scope := range r.scopes {
		scopes = append(scopes, scope)
	}
	// deepest scope first
	sort.Slice(scopes, func(i, j int) bool {
		return strings.Count(scopes[i], "/") > strings.Count(scopes[j], "/")
	})
	var (
		reg   Registration
		found bool
	)
	for _, scope := range scopes {
		if !containsPath(scope, from) {
			continue
		}
		if candidate, ok := r.scopes[scope][ext]; ok {
			reg, found = candidate, true
			break
		}
	}
	r.mu.RUnlock()

	if found {
		return reg, true
	}
	if def, ok := defaultReaders[ext]; ok {
		return def, true
	}
	return Registration{}, false
}

func normalizeScope(dir string) string {
	return filepath.ToSlash(filepath.Clean(dir))
}

// containsPath reports whether p equals scope or lives below it.
func containsPath(scope, p string) bool {
	if scope == p {
		return true
	}
	if scope == "/" {
		return strings.HasPrefix(p, "/")
	}
	return strings.HasPrefix(p, scope+"/")
}

var defaultReaders = map[string]Registration{
	".json": {Reader: JSON()},
}

// Default is the process-wide registry used by the loader engines.
var Default = NewRegistry()
