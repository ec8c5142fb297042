package loader

import (
	"io"
	"sync"

	"github.com/dataload-go/dataload/pkg/dataload"
)

// handleKey identifies a cached open file handle. Distinct read options for
// the same path are distinct handles.
type handleKey struct {
	path string
	opts dataload.ReadOptions
}

// memoizedLoad wraps a whole-file load so that all parts of one split file
// share a single read during the setup phase. The first Load performs the
// read; later calls return the retained result. Safe for concurrent use.
type memoizedLoad struct {
	mu     sync.Mutex
	load   func() ([]dataload.LoadedValue, error)
	done   bool
	values []dataload.LoadedValue
	err    error
	hits   int
	misses int
}

func newMemoizedLoad(load func() ([]dataload.LoadedValue, error)) *memoizedLoad {
	return &memoizedLoad{load: load}
}

func (m *memoizedLoad) Load() ([]dataload.LoadedValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		m.hits++
		return m.values, m.err
	}
	m.misses++
	m.values, m.err = m.load()
	m.done = true
	return m.values, m.err
}

// Stats returns how often the memoized result was reused versus computed.
func (m *memoizedLoad) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// invalidate drops the retained result so the next Load reads again.
func (m *memoizedLoad) invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.done = false
	m.values = nil
	m.err = nil
}

// loaderCaches holds the open handles and memoized loads accumulated by one
// loader while its test function runs. Cleared as a unit at teardown.
type loaderCaches struct {
	mu      sync.Mutex
	handles map[handleKey]io.ReadSeekCloser
	memos   map[*memoizedLoad]struct{}
}

func newLoaderCaches() *loaderCaches {
	return &loaderCaches{
		handles: make(map[handleKey]io.ReadSeekCloser),
		memos:   make(map[*memoizedLoad]struct{}),
	}
}

func (c *loaderCaches) getHandle(key handleKey) (io.ReadSeekCloser, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handles[key]
	return h, ok
}

// putHandle stores h unless a handle for key is already cached; the return
// value reports whether h was kept.
func (c *loaderCaches) putHandle(key handleKey, h io.ReadSeekCloser) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.handles[key]; exists {
		return false
	}
	c.handles[key] = h
	return true
}

func (c *loaderCaches) dropHandle(key handleKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handles, key)
}

func (c *loaderCaches) addMemo(m *memoizedLoad) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memos[m] = struct{}{}
}

// clear closes all cached handles and invalidates all registered memoized
// loads. Close failures are reported through the logger, never propagated:
// teardown must not fail a test run over an unclosable handle. Idempotent.
func (c *loaderCaches) clear(log dataload.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, h := range c.handles {
		if err := h.Close(); err != nil {
			log.Error("failed to close cached handle for %s: %v", key.path, err)
		}
		delete(c.handles, key)
	}
	for m := range c.memos {
		m.invalidate()
		delete(c.memos, m)
	}
}
