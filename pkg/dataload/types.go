package dataload

import (
	"fmt"
	"path/filepath"
)

// LoaderKind identifies the loading strategy requested for a test function.
// Behavior throughout the engines is selected by exhaustive switches on this
// enum; there is no attribute probing.
type LoaderKind int

const (
	// LoadFile loads one file and produces a single value.
	LoadFile LoaderKind = iota
	// ParametrizeFile splits one file's content into parts, one test case each.
	ParametrizeFile
	// ParametrizeDir loads every eligible file in a directory, one test case each.
	ParametrizeDir
)

func (k LoaderKind) String() string {
	switch k {
	case LoadFile:
		return "load"
	case ParametrizeFile:
		return "parametrize"
	case ParametrizeDir:
		return "parametrize_dir"
	default:
		return fmt.Sprintf("LoaderKind(%d)", int(k))
	}
}

// TargetsFile reports whether the loader's relative path must resolve to a
// file rather than a directory.
func (k LoaderKind) TargetsFile() bool {
	return k == LoadFile || k == ParametrizeFile
}

// SplitsContent reports whether the loader splits one file's content into
// multiple parts.
func (k LoaderKind) SplitsContent() bool {
	return k == ParametrizeFile
}

// LoadedValue is an already-resolved parameter: the source path plus the
// fully processed data. Immutable once created.
type LoadedValue struct {
	Path string
	Data any
}

// FileName returns the base name of the source file.
func (v LoadedValue) FileName() string {
	return filepath.Base(v.Path)
}

// PartMeta carries the marks and id computed for one part during the
// collection-time scan. It is consumed exactly once via TakeMeta.
type PartMeta struct {
	ID    string
	Marks []string
}

// Deferred is a placeholder standing in for one unresolved file's value.
// Resolve is idempotent in effect: the underlying load routine performs no
// side effects beyond reading the file.
type Deferred struct {
	path        string
	load        func() (LoadedValue, error)
	postResolve func()
}

// NewDeferred creates a whole-file placeholder around the given load routine.
// postResolve, if non-nil, runs after the first successful load.
func NewDeferred(path string, load func() (LoadedValue, error), postResolve func()) *Deferred {
	return &Deferred{path: path, load: load, postResolve: postResolve}
}

// Path returns the source file path.
func (d *Deferred) Path() string { return d.path }

// FileName returns the base name of the source file.
func (d *Deferred) FileName() string { return filepath.Base(d.path) }

// DefaultID returns the identifier used for the test case when no explicit
// id was configured.
func (d *Deferred) DefaultID() string { return d.FileName() }

// Resolve performs the deferred load and returns the data.
func (d *Deferred) Resolve() (any, error) {
	lv, err := d.load()
	if err != nil {
		return nil, err
	}
	if d.postResolve != nil {
		d.postResolve()
	}
	return lv.Data, nil
}

// DeferredPart is a placeholder for the i-th logical record of a file that
// was split into many records. Exactly one of two resolution modes applies:
//
//   - direct-seek mode: Offset reports a byte offset and resolution seeks
//     to it and reads one record;
//   - whole-collection mode: no offset is present and resolution invokes a
//     memoized whole-file load, extracting the record at Index.
type DeferredPart struct {
	path        string
	index       int
	offset      *int64
	meta        *PartMeta
	loadOne     func() (LoadedValue, error)
	loadAll     func() ([]LoadedValue, error)
	postResolve func()
}

// NewSeekPart creates a direct-seek part placeholder.
func NewSeekPart(path string, index int, offset int64, loadOne func() (LoadedValue, error), meta *PartMeta) *DeferredPart {
	return &DeferredPart{path: path, index: index, offset: &offset, meta: meta, loadOne: loadOne}
}

// NewCollectionPart creates a whole-collection part placeholder. postResolve,
// if non-nil, runs after each successful load, before extraction; the engine
// uses it to register the shared memoized loader for teardown.
func NewCollectionPart(path string, index int, loadAll func() ([]LoadedValue, error), meta *PartMeta, postResolve func()) *DeferredPart {
	return &DeferredPart{path: path, index: index, meta: meta, loadAll: loadAll, postResolve: postResolve}
}

// Path returns the source file path.
func (p *DeferredPart) Path() string { return p.path }

// FileName returns the base name of the source file.
func (p *DeferredPart) FileName() string { return filepath.Base(p.path) }

// Index returns the record index within the split file.
func (p *DeferredPart) Index() int { return p.index }

// Offset returns the byte offset of the record and whether direct-seek mode
// applies.
func (p *DeferredPart) Offset() (int64, bool) {
	if p.offset == nil {
		return 0, false
	}
	return *p.offset, true
}

// DefaultID returns the identifier used for the test case when no explicit
// id was configured: "<file name>:part<N>", 1-based.
func (p *DeferredPart) DefaultID() string {
	return fmt.Sprintf("%s:part%d", p.FileName(), p.index+1)
}

// TakeMeta returns the collection-time metadata and clears it. The metadata
// is only needed once, when the host converts placeholders into test cases;
// retaining it would keep collection-time closures alive for the whole
// session.
func (p *DeferredPart) TakeMeta() PartMeta {
	if p.meta == nil {
		return PartMeta{}
	}
	m := *p.meta
	p.meta = nil
	return m
}

// Resolve turns the placeholder into its concrete value. In direct-seek mode
// it reads exactly one record; in whole-collection mode it invokes the
// memoized whole-file load and extracts the record at Index. An index that
// falls outside the loaded collection indicates an internal inconsistency
// between collection and setup, never user error, and panics.
func (p *DeferredPart) Resolve() (any, error) {
	if p.offset != nil {
		lv, err := p.loadOne()
		if err != nil {
			return nil, err
		}
		if p.postResolve != nil {
			p.postResolve()
		}
		return lv.Data, nil
	}

	all, err := p.loadAll()
	if err != nil {
		return nil, err
	}
	if p.postResolve != nil {
		p.postResolve()
	}
	if p.index < 0 || p.index >= len(all) {
		panic(fmt.Sprintf("dataload: part index %d out of range for %d loaded records of %s",
			p.index, len(all), p.path))
	}
	return all[p.index].Data, nil
}

// ItemKind tags the variant held by an Item.
type ItemKind int

const (
	// ItemValue holds an already-resolved LoadedValue.
	ItemValue ItemKind = iota
	// ItemDeferred holds a whole-file placeholder.
	ItemDeferred
	// ItemPart holds a part placeholder.
	ItemPart
)

// Item is one parameter produced by a load: a tagged variant over the three
// loadable entity shapes. The host framework switches on Kind; it never duck
// types.
type Item struct {
	Kind     ItemKind
	Value    LoadedValue
	Deferred *Deferred
	Part     *DeferredPart

	// ID and Marks apply to ItemValue and ItemDeferred items (directory
	// loads and eager loads). Part items carry their metadata on the
	// placeholder itself; see DeferredPart.TakeMeta.
	ID    string
	Marks []string
}

// Path returns the source path of whichever variant is held.
func (it Item) Path() string {
	switch it.Kind {
	case ItemDeferred:
		return it.Deferred.Path()
	case ItemPart:
		return it.Part.Path()
	default:
		return it.Value.Path
	}
}

// Resolve returns the item's data, performing the deferred load if one is
// pending.
func (it Item) Resolve() (any, error) {
	switch it.Kind {
	case ItemDeferred:
		return it.Deferred.Resolve()
	case ItemPart:
		return it.Part.Resolve()
	default:
		return it.Value.Data, nil
	}
}

// DefaultID returns the identifier for the item when no explicit id applies.
func (it Item) DefaultID() string {
	switch it.Kind {
	case ItemDeferred:
		return it.Deferred.DefaultID()
	case ItemPart:
		return it.Part.DefaultID()
	default:
		return it.Value.FileName()
	}
}
