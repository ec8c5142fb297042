package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dataload-go/dataload/internal/files/filesystem"
	"github.com/dataload-go/dataload/internal/files/scanner"
	"github.com/dataload-go/dataload/internal/identity"
	"github.com/dataload-go/dataload/internal/logging"
	"github.com/dataload-go/dataload/internal/readers"
	"github.com/dataload-go/dataload/pkg/dataload"
)

// streamableExts lists the file types whose parts can be loaded by seeking
// to a byte offset instead of loading the whole file.
var streamableExts = map[string]bool{
	".txt": true,
	".log": true,
	".csv": true,
	".tsv": true,
}

// Config carries the construction inputs shared by the file and directory
// engines. Zero-value fields fall back to production defaults.
type Config struct {
	// Path is the absolute path of the data file or directory.
	Path string
	// Attrs is the validated loader configuration.
	Attrs *dataload.LoadAttrs
	// StripTrailingWhitespace enables whitespace normalization for text data.
	StripTrailingWhitespace bool
	// SearchFrom scopes reader-registry lookups; defaults to Path's directory.
	SearchFrom string

	FS       filesystem.Provider
	Logger   dataload.Logger
	Registry *readers.Registry
}

func (c *Config) applyDefaults() {
	if c.FS == nil {
		c.FS = filesystem.NewOSFileSystem()
	}
	if c.Logger == nil {
		c.Logger = logging.NewNullLogger()
	}
	if c.Registry == nil {
		c.Registry = readers.Default
	}
	if c.SearchFrom == "" {
		c.SearchFrom = filepath.Dir(c.Path)
	}
}

// FileLoader loads one data file and turns it into test parameters.
//
// A loader classifies its file once at construction: streamable files can be
// split lazily by byte offset, everything else resolves through a shared
// whole-file load. The accumulated caches live until ClearCache.
type FileLoader struct {
	path        string
	id          uuid.UUID
	attrs       *dataload.LoadAttrs
	strip       bool
	readOptions dataload.ReadOptions
	reader      dataload.Reader
	streamable  bool
	fs          filesystem.Provider
	log         dataload.Logger

	mu             sync.Mutex
	resolvedBinary bool // auto mode fell back to binary once

	memo   *memoizedLoad
	caches *loaderCaches
}

// NewFileLoader creates a loader for the file at cfg.Path.
func NewFileLoader(cfg Config) (*FileLoader, error) {
	cfg.applyDefaults()
	if !filepath.IsAbs(cfg.Path) {
		return nil, fmt.Errorf("loader path must be absolute: %s", cfg.Path)
	}

	ext := filepath.Ext(cfg.Path)
	readOptions := cfg.Attrs.ReadOptions
	reader := cfg.Attrs.Reader
	if reader == nil {
		if reg, ok := cfg.Registry.Lookup(cfg.SearchFrom, ext); ok {
			reader = reg.Reader
			if readOptions == (dataload.ReadOptions{}) {
				readOptions = reg.Options
			}
		}
	}

	l := &FileLoader{
		path:        cfg.Path,
		id:          identity.ForPath(cfg.Path),
		attrs:       cfg.Attrs,
		strip:       cfg.StripTrailingWhitespace,
		readOptions: readOptions,
		reader:      reader,
		fs:          cfg.FS,
		log:         cfg.Logger,
		caches:      newLoaderCaches(),
	}
	l.streamable = streamableExts[ext] &&
		readOptions.IsDefaultText() &&
		reader == nil &&
		cfg.Attrs.OnLoad == nil &&
		cfg.Attrs.Parametrizer == nil

	// Backstop for hosts that never call ClearCache; the regular teardown
	// path must not keep the loader reachable from the cleanup closure.
	log := cfg.Logger
	runtime.AddCleanup(l, func(c *loaderCaches) { c.clear(log) }, l.caches)

	return l, nil
}

// Path returns the absolute path of the data file.
func (l *FileLoader) Path() string { return l.path }

// ID returns the deterministic dataset identity of the file, stable across
// platforms and runs. It appears in diagnostics alongside the path.
func (l *FileLoader) ID() uuid.UUID { return l.id }

// Streamable reports whether parts of this file resolve by byte-offset seek.
func (l *FileLoader) Streamable() bool { return l.streamable }

// CacheStats reports reuse of the shared whole-file load backing the parts
// of a non-streamable split. Both counts are zero until a part resolves.
func (l *FileLoader) CacheStats() (hits, misses int) {
	l.mu.Lock()
	memo := l.memo
	l.mu.Unlock()
	if memo == nil {
		return 0, 0
	}
	return memo.Stats()
}

// ClearCache closes cached file handles and drops memoized loads. Close
// failures are logged, not returned. Safe to call any number of times.
func (l *FileLoader) ClearCache() {
	l.caches.clear(l.log)
}

// Load produces the parameters for this file according to the configured
// loader kind and laziness.
func (l *FileLoader) Load() ([]dataload.Item, error) {
	if !l.attrs.Kind.TargetsFile() {
		return nil, dataload.Usagef(l.attrs.Kind.String(), l.path,
			"the %s loader cannot load a single file", l.attrs.Kind)
	}
	if l.attrs.LazyLoading {
		return l.loadLazily()
	}
	return l.loadEagerly()
}

func (l *FileLoader) loadEagerly() ([]dataload.Item, error) {
	if l.attrs.Kind.SplitsContent() {
		values, err := l.loadSplit()
		if err != nil {
			return nil, err
		}
		items := make([]dataload.Item, 0, len(values))
		for _, v := range values {
			item := dataload.Item{Kind: dataload.ItemValue, Value: v}
			if err := l.decorate(&item, v.Data); err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	}

	v, err := l.loadSingle()
	if err != nil {
		return nil, err
	}
	return []dataload.Item{{Kind: dataload.ItemValue, Value: v}}, nil
}

func (l *FileLoader) loadLazily() ([]dataload.Item, error) {
	if !l.attrs.Kind.SplitsContent() {
		d := dataload.NewDeferred(l.path, l.loadSingle, nil)
		return []dataload.Item{{Kind: dataload.ItemDeferred, Deferred: d}}, nil
	}
	if l.streamable {
		return l.loadLazyStreamed()
	}
	return l.loadLazyCollected()
}

// loadLazyStreamed enumerates parts with a streaming scan. No part content
// is retained; each placeholder resolves by seeking to its offset.
func (l *FileLoader) loadLazyStreamed() ([]dataload.Item, error) {
	sc := scanner.NewScannerWithFS(l.fs)
	entries, err := sc.ScanLines(l.path, l.strip, scanner.Callbacks{
		Filter: l.attrs.Filter,
		Marker: l.attrs.Marker,
		ID:     l.attrs.ID,
	})
	if err != nil {
		return nil, err
	}

	l.log.Verbose("streamed scan of %s (dataset %s) found %d parts", l.path, l.id, len(entries))
	items := make([]dataload.Item, 0, len(entries))
	for i, entry := range entries {
		offset := entry.Offset
		part := dataload.NewSeekPart(l.path, i, offset, func() (dataload.LoadedValue, error) {
			return l.loadPartAt(offset, false)
		}, &dataload.PartMeta{ID: entry.ID, Marks: entry.Marks})
		items = append(items, dataload.Item{Kind: dataload.ItemPart, Part: part})
	}
	return items, nil
}

// loadLazyCollected loads the whole file once to count its parts and compute
// their metadata, then discards the data. Parts share one memoized reload
// during the setup phase.
func (l *FileLoader) loadLazyCollected() ([]dataload.Item, error) {
	values, err := l.loadSplit()
	if err != nil {
		return nil, err
	}

	memo := newMemoizedLoad(l.loadSplit)
	l.mu.Lock()
	l.memo = memo
	l.mu.Unlock()

	l.log.Verbose("collection load of %s (dataset %s) found %d parts", l.path, l.id, len(values))
	items := make([]dataload.Item, 0, len(values))
	for i, v := range values {
		meta := &dataload.PartMeta{}
		if l.attrs.Marker != nil {
			out, err := l.attrs.Marker.Call(l.path, v.Data)
			if err != nil {
				return nil, err
			}
			if meta.Marks, err = dataload.MarksOf(out); err != nil {
				return nil, err
			}
		}
		if l.attrs.ID != nil {
			out, err := l.attrs.ID.Call(l.path, v.Data)
			if err != nil {
				return nil, err
			}
			meta.ID = dataload.IDOf(out)
		}
		part := dataload.NewCollectionPart(l.path, i, memo.Load, meta, func() {
			l.caches.addMemo(memo)
		})
		items = append(items, dataload.Item{Kind: dataload.ItemPart, Part: part})
	}
	return items, nil
}

// decorate attaches marker and id results to an eagerly loaded item.
func (l *FileLoader) decorate(item *dataload.Item, data any) error {
	if l.attrs.Marker != nil {
		out, err := l.attrs.Marker.Call(l.path, data)
		if err != nil {
			return err
		}
		if item.Marks, err = dataload.MarksOf(out); err != nil {
			return err
		}
	}
	if l.attrs.ID != nil {
		out, err := l.attrs.ID.Call(l.path, data)
		if err != nil {
			return err
		}
		item.ID = dataload.IDOf(out)
	}
	return nil
}

// loadSingle performs the full eager pipeline for a whole-file value.
func (l *FileLoader) loadSingle() (dataload.LoadedValue, error) {
	data, err := l.loadData()
	if err != nil {
		return dataload.LoadedValue{}, err
	}
	if l.attrs.Process != nil {
		if data, err = l.attrs.Process.Call(l.path, data); err != nil {
			return dataload.LoadedValue{}, err
		}
	}
	return dataload.LoadedValue{Path: l.path, Data: data}, nil
}

// loadSplit performs the full eager pipeline and splits the result into
// per-part values.
func (l *FileLoader) loadSplit() ([]dataload.LoadedValue, error) {
	data, err := l.loadData()
	if err != nil {
		return nil, err
	}

	var parts []any
	if l.attrs.Parametrizer != nil {
		out, err := l.attrs.Parametrizer.Call(l.path, data)
		if err != nil {
			return nil, err
		}
		if parts, err = l.normalizeSplit(out); err != nil {
			return nil, err
		}
	} else {
		if parts, err = l.defaultSplit(data); err != nil {
			return nil, err
		}
	}

	values := make([]dataload.LoadedValue, 0, len(parts))
	for _, part := range parts {
		if l.attrs.Filter != nil {
			keep, err := l.attrs.Filter.CallFilter(l.path, part)
			if err != nil {
				return nil, err
			}
			if !keep {
				continue
			}
		}
		if l.attrs.Process != nil {
			if part, err = l.attrs.Process.Call(l.path, part); err != nil {
				return nil, err
			}
		}
		values = append(values, dataload.LoadedValue{Path: l.path, Data: part})
	}
	return values, nil
}

// loadData reads the file and applies the managed and user onload steps.
func (l *FileLoader) loadData() (any, error) {
	data, err := l.readData()
	if err != nil {
		return nil, err
	}
	if s, ok := data.(string); ok && l.strip {
		data = strings.TrimRightFunc(s, unicode.IsSpace)
	}
	if l.attrs.OnLoad != nil {
		if data, err = l.attrs.OnLoad.Call(l.path, data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// readData produces the raw loaded value: the reader output when a reader
// applies, otherwise text or bytes per the read options. In auto mode a
// failed text decode switches this loader to binary permanently.
func (l *FileLoader) readData() (any, error) {
	raw, err := l.fs.ReadFile(l.path)
	if err != nil {
		return nil, err
	}

	if l.reader != nil {
		stream, err := l.decodedStream(raw)
		if err != nil {
			return nil, err
		}
		out, err := l.reader(stream)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", l.path, err)
		}
		return out, nil
	}

	mode := l.readOptions.Mode
	l.mu.Lock()
	if mode == dataload.ModeAuto && l.resolvedBinary {
		mode = dataload.ModeBinary
	}
	l.mu.Unlock()

	switch mode {
	case dataload.ModeBinary:
		return raw, nil
	case dataload.ModeText:
		s, err := l.decodeText(raw)
		if err != nil {
			return nil, err
		}
		return s, nil
	default: // auto
		s, err := l.decodeText(raw)
		if err != nil {
			l.log.Verbose("%s is not valid text, switching to binary", l.path)
			l.mu.Lock()
			l.resolvedBinary = true
			l.mu.Unlock()
			return raw, nil
		}
		return s, nil
	}
}

func (l *FileLoader) decodeText(raw []byte) (string, error) {
	enc, err := l.readOptions.Charset()
	if err != nil {
		return "", err
	}
	if enc != nil {
		if raw, err = enc.NewDecoder().Bytes(raw); err != nil {
			return "", fmt.Errorf("failed to decode %s as %s: %w", l.path, l.readOptions.Encoding, err)
		}
	} else if !utf8.Valid(raw) {
		return "", fmt.Errorf("%s is not valid UTF-8", l.path)
	}
	s := string(raw)
	if l.readOptions.Newline == dataload.NewlineTranslate {
		s = strings.ReplaceAll(s, "\r\n", "\n")
	}
	return s, nil
}

// decodedStream prepares the stream handed to a reader: charset-transformed
// for text reads, raw for binary reads.
func (l *FileLoader) decodedStream(raw []byte) (io.Reader, error) {
	if l.readOptions.Mode == dataload.ModeBinary {
		return bytes.NewReader(raw), nil
	}
	enc, err := l.readOptions.Charset()
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return bytes.NewReader(raw), nil
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s as %s: %w", l.path, l.readOptions.Encoding, err)
	}
	return bytes.NewReader(decoded), nil
}

// defaultSplit is the built-in parametrizer: strings split into lines,
// ordered objects into members, slices into elements, anything else into a
// single part. Binary content has no meaningful default split.
func (l *FileLoader) defaultSplit(data any) ([]any, error) {
	switch d := data.(type) {
	case []byte:
		return nil, dataload.Usagef(l.attrs.Kind.String(), l.path,
			"a custom parametrizer function is required for binary data")
	case string:
		return splitLines(d), nil
	case dataload.Object:
		parts := make([]any, 0, len(d))
		for _, m := range d {
			parts = append(parts, m)
		}
		return parts, nil
	case map[string]any:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]any, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, dataload.Member{Key: k, Value: d[k]})
		}
		return parts, nil
	default:
		v := reflect.ValueOf(data)
		if data != nil && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) {
			parts := make([]any, 0, v.Len())
			for i := 0; i < v.Len(); i++ {
				parts = append(parts, v.Index(i).Interface())
			}
			return parts, nil
		}
		return []any{data}, nil
	}
}

// normalizeSplit validates a custom parametrizer result. The result must be
// a real collection; strings and byte slices are single values here.
func (l *FileLoader) normalizeSplit(out any) ([]any, error) {
	switch d := out.(type) {
	case nil, string, []byte:
		return nil, dataload.Usagef(l.attrs.Kind.String(), l.path,
			"parametrized data must be a slice, not %T", out)
	case dataload.Object:
		parts := make([]any, 0, len(d))
		for _, m := range d {
			parts = append(parts, m)
		}
		return parts, nil
	case []any:
		return d, nil
	default:
		v := reflect.ValueOf(out)
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return nil, dataload.Usagef(l.attrs.Kind.String(), l.path,
				"parametrized data must be a slice, not %T", out)
		}
		parts := make([]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			parts = append(parts, v.Index(i).Interface())
		}
		return parts, nil
	}
}

// loadPartAt reads the single line starting at offset. When closeAfter is
// false the open handle is cached and reused by later parts of the same
// file; ClearCache closes it.
func (l *FileLoader) loadPartAt(offset int64, closeAfter bool) (dataload.LoadedValue, error) {
	if !l.streamable {
		return dataload.LoadedValue{}, fmt.Errorf("part loading by offset is not supported for %s", l.path)
	}

	key := handleKey{path: l.path, opts: l.readOptions}
	h, cached := l.caches.getHandle(key)
	if !cached {
		var err error
		if h, err = l.fs.OpenFile(l.path); err != nil {
			return dataload.LoadedValue{}, err
		}
	}

	cleanup := func() {
		if closeAfter {
			if err := h.Close(); err != nil {
				l.log.Error("failed to close %s: %v", l.path, err)
			}
			l.caches.dropHandle(key)
			return
		}
		if !cached && !l.caches.putHandle(key, h) {
			// another goroutine cached a handle first
			if err := h.Close(); err != nil {
				l.log.Error("failed to close %s: %v", l.path, err)
			}
		}
	}
	defer cleanup()

	if _, err := h.Seek(offset, io.SeekStart); err != nil {
		return dataload.LoadedValue{}, err
	}
	raw, err := bufio.NewReader(h).ReadString('\n')
	if err != nil && err != io.EOF {
		return dataload.LoadedValue{}, err
	}

	var data any = strings.TrimRight(raw, "\r\n")
	if l.attrs.Process != nil {
		if data, err = l.attrs.Process.Call(l.path, data); err != nil {
			return dataload.LoadedValue{}, err
		}
	}
	return dataload.LoadedValue{Path: l.path, Data: data}, nil
}

// splitLines mirrors line iteration over in-memory text: every line becomes
// one part with its terminator removed, and empty input has no lines.
func splitLines(s string) []any {
	if s == "" {
		return nil
	}
	var out []any
	for len(s) > 0 {
		i := strings.IndexByte(s, '\n')
		var line string
		if i < 0 {
			line, s = s, ""
		} else {
			line, s = s[:i], s[i+1:]
		}
		out = append(out, strings.TrimSuffix(line, "\r"))
	}
	return out
}
