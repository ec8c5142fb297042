package dataload

import (
	core "github.com/dataload-go/dataload/pkg/dataload"
)

// loadOptions collects the per-call configuration before it is compiled
// into validated loader attributes.
type loadOptions struct {
	lazySet     bool
	lazy        bool
	reader      Reader
	readOptions ReadOptions
	onload      any
	parametrize any
	filter      any
	process     any
	marker      any
	idFunc      any
	recursive   bool
	readerFor   func(path string) Reader
	readOptsFor func(path string) ReadOptions
	logger      Logger
	stripSet    bool
	strip       bool
}

// Option customizes one Load, Parametrize or ParametrizeDir call.
type Option func(*loadOptions)

// WithLazyLoading controls whether file content is read during enumeration
// or deferred until each test resolves its parameter. Lazy is the default.
func WithLazyLoading(lazy bool) Option {
	return func(o *loadOptions) { o.lazySet, o.lazy = true, lazy }
}

// WithReader replaces raw reads with a custom reader, e.g. a CSV or YAML
// parser. The test receives whatever the reader returns.
func WithReader(r Reader) Option {
	return func(o *loadOptions) { o.reader = r }
}

// WithReadOptions sets the file read options (mode, encoding, newline).
func WithReadOptions(opts ReadOptions) Option {
	return func(o *loadOptions) { o.readOptions = opts }
}

// WithOnLoad preprocesses loaded data before any splitting. The function
// takes the data, or the file path and the data.
func WithOnLoad(fn any) Option {
	return func(o *loadOptions) { o.onload = fn }
}

// WithParametrizer replaces the default content splitter. The function must
// return a slice; each element becomes one test case.
func WithParametrizer(fn any) Option {
	return func(o *loadOptions) { o.parametrize = fn }
}

// WithFilter selects which parts (or, for directory loads, which file
// paths) become test cases. The function must return bool.
func WithFilter(fn any) Option {
	return func(o *loadOptions) { o.filter = fn }
}

// WithProcess transforms each part after filtering.
func WithProcess(fn any) Option {
	return func(o *loadOptions) { o.process = fn }
}

// WithMarker computes marks for each test case. Returning "skip" (or a
// slice containing it) skips the case. For directory loads the function
// receives the file path.
func WithMarker(fn any) Option {
	return func(o *loadOptions) { o.marker = fn }
}

// WithIDFunc computes each test case's subtest name from its data. Only
// valid for Parametrize; Load runs no subtest.
func WithIDFunc(fn any) Option {
	return func(o *loadOptions) { o.idFunc = fn }
}

// WithID names every generated subtest with the same fixed string; the
// testing package suffixes duplicates with #01, #02 and so on. Useful when
// a split yields a single case, or to group cases under one readable name.
// Only valid for Parametrize; Load runs no subtest.
func WithID(id string) Option {
	return func(o *loadOptions) { o.idFunc = func(any) string { return id } }
}

// WithRecursive includes files of nested subdirectories in directory loads.
func WithRecursive() Option {
	return func(o *loadOptions) { o.recursive = true }
}

// WithReaderFor selects readers per file in directory loads. Returning nil
// keeps the default for that file.
func WithReaderFor(fn func(path string) Reader) Option {
	return func(o *loadOptions) { o.readerFor = fn }
}

// WithReadOptionsFor selects read options per file in directory loads.
func WithReadOptionsFor(fn func(path string) ReadOptions) Option {
	return func(o *loadOptions) { o.readOptsFor = fn }
}

// WithLogger routes loader diagnostics to a custom logger instead of the
// test log.
func WithLogger(l Logger) Option {
	return func(o *loadOptions) { o.logger = l }
}

// WithStripTrailingWhitespace overrides the project-wide whitespace
// normalization setting for this call.
func WithStripTrailingWhitespace(strip bool) Option {
	return func(o *loadOptions) { o.stripSet, o.strip = true, strip }
}

// compile turns the collected options into validated loader attributes.
// Directory loads bind path-style callbacks; file loads bind data-style
// callbacks.
func (o *loadOptions) compile(kind core.LoaderKind, fixtureNames []string, relPath string) (*core.LoadAttrs, error) {
	attrs := &core.LoadAttrs{
		Kind:           kind,
		FixtureNames:   fixtureNames,
		RelPath:        relPath,
		LazyLoading:    true,
		Recursive:      o.recursive,
		Reader:         o.reader,
		ReaderFor:      o.readerFor,
		ReadOptionsFor: o.readOptsFor,
		ReadOptions:    o.readOptions,
	}
	if o.lazySet {
		attrs.LazyLoading = o.lazy
	}

	var err error
	if attrs.OnLoad, err = core.NewCallback("onload", o.onload); err != nil {
		return nil, err
	}
	if attrs.Parametrizer, err = core.NewCallback("parametrizer", o.parametrize); err != nil {
		return nil, err
	}
	if attrs.Process, err = core.NewCallback("process", o.process); err != nil {
		return nil, err
	}
	if attrs.ID, err = core.NewCallback("id", o.idFunc); err != nil {
		return nil, err
	}

	if kind == core.ParametrizeDir {
		if attrs.Filter, err = core.NewPathCallback("filter", o.filter); err != nil {
			return nil, err
		}
		if attrs.Marker, err = core.NewPathCallback("marker", o.marker); err != nil {
			return nil, err
		}
	} else {
		if attrs.Filter, err = core.NewCallback("filter", o.filter); err != nil {
			return nil, err
		}
		if attrs.Marker, err = core.NewCallback("marker", o.marker); err != nil {
			return nil, err
		}
	}

	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	return attrs, nil
}
