package dataload

import (
	"fmt"
	"go/token"
	"path/filepath"
	"strings"
)

// DefaultLoaderDirName is the directory name searched for test data when
// the project configuration does not override it.
const DefaultLoaderDirName = "test_data"

// LoadAttrs is the immutable configuration snapshot for one test function's
// data loader. It is validated and normalized once, at the facade call that
// builds it, and read-only afterward; every loader instance created for the
// test references (never owns) it.
type LoadAttrs struct {
	Kind         LoaderKind
	FixtureNames []string
	RelPath      string
	LazyLoading  bool
	Recursive    bool

	// Reader, when set, replaces raw reads for the target file(s).
	Reader Reader

	// Transform callbacks, all optional. OnLoad preprocesses loaded data,
	// Parametrizer replaces the default splitter, Filter selects records,
	// Process reshapes each record, Marker and ID compute per-record
	// metadata.
	OnLoad       *Callback
	Parametrizer *Callback
	Filter       *Callback
	Process      *Callback
	Marker       *Callback
	ID           *Callback

	// Directory-load overrides, keyed by file path.
	ReaderFor      func(path string) Reader
	ReadOptionsFor func(path string) ReadOptions

	ReadOptions ReadOptions
}

// WantsFilePath reports whether the test asked for the file path alongside
// the data (two fixture names).
func (a *LoadAttrs) WantsFilePath() bool { return len(a.FixtureNames) == 2 }

// ParseFixtureNames normalizes a fixture-name specification: either one name
// or two comma-separated names, each a valid identifier.
func ParseFixtureNames(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, strings.TrimSpace(p))
	}
	if len(names) > 2 {
		return nil, &UsageError{Reason: fmt.Sprintf(
			"fixture names: expected 1 or 2 names, got %d: %q", len(names), raw)}
	}
	for _, n := range names {
		if !token.IsIdentifier(n) {
			return nil, &UsageError{Reason: fmt.Sprintf("fixture names: illegal name %q in %q", n, raw)}
		}
	}
	return names, nil
}

// Validate checks the snapshot as a whole. It is called once when the
// attributes are built; all violations are usage errors.
func (a *LoadAttrs) Validate() error {
	if len(a.FixtureNames) == 0 || len(a.FixtureNames) > 2 {
		return Usagef(a.Kind.String(), a.RelPath,
			"fixture names: expected 1 or 2 names, got %d", len(a.FixtureNames))
	}
	for _, n := range a.FixtureNames {
		if !token.IsIdentifier(n) {
			return Usagef(a.Kind.String(), a.RelPath, "fixture names: illegal name %q", n)
		}
	}

	if err := a.validateRelPath(); err != nil {
		return err
	}

	if a.Kind == LoadFile {
		for name, cb := range map[string]*Callback{
			"parametrizer": a.Parametrizer,
			"filter":       a.Filter,
			"process":      a.Process,
			"marker":       a.Marker,
			"id":           a.ID,
		} {
			if cb != nil {
				return Usagef(a.Kind.String(), a.RelPath,
					"%s is not supported for the %s loader", name, a.Kind)
			}
		}
	}
	if a.Kind == ParametrizeDir {
		for name, cb := range map[string]*Callback{
			"parametrizer": a.Parametrizer,
			"onload":       a.OnLoad,
			"id":           a.ID,
		} {
			if cb != nil {
				return Usagef(a.Kind.String(), a.RelPath,
					"%s is not supported for the %s loader", name, a.Kind)
			}
		}
	}
	if a.Kind != ParametrizeDir {
		if a.Recursive {
			return Usagef(a.Kind.String(), a.RelPath,
				"recursive loading applies only to the %s loader", ParametrizeDir)
		}
		if a.ReaderFor != nil || a.ReadOptionsFor != nil {
			return Usagef(a.Kind.String(), a.RelPath,
				"per-file overrides apply only to the %s loader", ParametrizeDir)
		}
	}

	if err := a.ReadOptions.Validate(); err != nil {
		return err
	}
	return nil
}

func (a *LoadAttrs) validateRelPath() error {
	p := a.RelPath
	if p == "" || p == "." || p == ".." {
		return Usagef(a.Kind.String(), p, "invalid relative path %q", p)
	}
	if filepath.IsAbs(p) {
		return Usagef(a.Kind.String(), p, "the data path cannot be absolute: %q", p)
	}
	return nil
}
