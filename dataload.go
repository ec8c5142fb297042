// Package dataload loads test data from files and directories and binds it
// to Go tests as parameters.
//
// Data files live in a loader directory (by default "test_data") located by
// searching upward from the test source file. Content is loaded lazily: a
// parametrized file is enumerated at collection without reading it fully,
// and each subtest resolves only its own part.
//
//	func TestGreeting(t *testing.T) {
//	    dataload.Load(t, "data", "greeting.txt", func(t *testing.T, p dataload.Param) {
//	        // p.Data is the file content
//	    })
//	}
//
// Project-wide settings come from dataload.yaml at the module root and
// DATALOAD_* environment variables.
package dataload

import (
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"testing"

	"github.com/dataload-go/dataload/internal/config"
	"github.com/dataload-go/dataload/internal/files/loader"
	"github.com/dataload-go/dataload/internal/files/locate"
	"github.com/dataload-go/dataload/internal/logging"
	"github.com/dataload-go/dataload/internal/readers"
	core "github.com/dataload-go/dataload/pkg/dataload"
)

// Re-exported contract types; the facade is the only package tests import.
type (
	// Reader converts a raw file stream into loaded data.
	Reader = core.Reader
	// ReadOptions selects mode, encoding and newline handling for reads.
	ReadOptions = core.ReadOptions
	// ReadMode selects text, binary or automatic content interpretation.
	ReadMode = core.ReadMode
	// NewlineMode selects newline translation for text reads.
	NewlineMode = core.NewlineMode
	// Object is a JSON/YAML mapping with its member order preserved.
	Object = core.Object
	// Member is one key/value pair of an Object.
	Member = core.Member
	// Logger receives loader diagnostics.
	Logger = core.Logger
	// UsageError reports invalid loader configuration.
	UsageError = core.UsageError
	// NotFoundError reports a data path that resolved nowhere.
	NotFoundError = core.NotFoundError
)

const (
	ModeAuto   = core.ModeAuto
	ModeText   = core.ModeText
	ModeBinary = core.ModeBinary

	NewlineTranslate = core.NewlineTranslate
	NewlineKeep      = core.NewlineKeep
)

// Sentinel errors for errors.Is checks.
var (
	ErrUsage         = core.ErrUsage
	ErrNotFound      = core.ErrNotFound
	ErrInvalidConfig = core.ErrInvalidConfig
)

// MarkSkip is the mark that skips a test case.
const MarkSkip = "skip"

// Param is the parameter handed to a test: the resolved data and the path
// of the file it came from.
type Param struct {
	Path string
	Data any
}

// FileName returns the base name of the source file.
func (p Param) FileName() string { return filepath.Base(p.Path) }

// Load resolves relPath to a single data file and invokes run with its
// content. fixtureNames names the values the test consumes: one name for
// the data, or "path, data" to request the file path too (kept for parity
// with configuration files; Param always carries both).
func Load(t *testing.T, fixtureNames, relPath string, run func(t *testing.T, p Param), opts ...Option) {
	t.Helper()
	runLoader(t, core.LoadFile, fixtureNames, relPath, run, opts)
}

// Parametrize resolves relPath to a data file, splits its content, and runs
// one subtest per part. Text files split into lines, JSON objects into
// members, arrays into elements; WithParametrizer replaces the default.
func Parametrize(t *testing.T, fixtureNames, relPath string, run func(t *testing.T, p Param), opts ...Option) {
	t.Helper()
	runLoader(t, core.ParametrizeFile, fixtureNames, relPath, run, opts)
}

// ParametrizeDir resolves relPath to a directory and runs one subtest per
// file in it.
func ParametrizeDir(t *testing.T, fixtureNames, relPath string, run func(t *testing.T, p Param), opts ...Option) {
	t.Helper()
	runLoader(t, core.ParametrizeDir, fixtureNames, relPath, run, opts)
}

// RegisterReader installs a reader for a file extension, effective for test
// files in and below the calling file's directory. Call it from TestMain or
// an init function of the test package.
func RegisterReader(ext string, r Reader, readOptions ...ReadOptions) error {
	_, callerFile, _, ok := runtime.Caller(1)
	if !ok {
		return fmt.Errorf("dataload: unable to determine the registration scope")
	}
	var opts ReadOptions
	if len(readOptions) > 0 {
		opts = readOptions[0]
	}
	return readers.Default.Register(filepath.Dir(callerFile), ext, r, opts)
}

// UnregisterReader removes a registration made from the calling file's
// directory.
func UnregisterReader(ext string) {
	if _, callerFile, _, ok := runtime.Caller(1); ok {
		readers.Default.Unregister(filepath.Dir(callerFile), ext)
	}
}

// JSONReader returns the order-preserving JSON reader. It is the built-in
// default for ".json" files; exported so it can be registered for other
// extensions.
func JSONReader() Reader { return readers.JSON() }

// CSVReader returns a reader producing [][]string records, one per row,
// with the given field delimiter.
func CSVReader(comma rune) Reader { return readers.CSV(comma) }

// YAMLReader returns a reader decoding a YAML document with mapping keys
// kept in document order.
func YAMLReader() Reader { return readers.YAML() }

var (
	configCache sync.Map // root dir -> *config.Config
	resolver    = locate.NewResolver(nil)
)

func projectConfig(rootDir string) *config.Config {
	if cached, ok := configCache.Load(rootDir); ok {
		return cached.(*config.Config)
	}
	cfg, err := config.Load(rootDir)
	if err != nil {
		// configuration problems surface on every test of the project
		panic(fmt.Sprintf("dataload: %v", err))
	}
	actual, _ := configCache.LoadOrStore(rootDir, cfg)
	return actual.(*config.Config)
}

func runLoader(t *testing.T, kind core.LoaderKind, fixtureNames, relPath string, run func(t *testing.T, p Param), opts []Option) {
	t.Helper()

	_, callerFile, _, ok := runtime.Caller(2)
	if !ok {
		t.Fatal("dataload: unable to locate the calling test file")
	}

	names, err := core.ParseFixtureNames(fixtureNames)
	if err != nil {
		t.Fatalf("dataload: %v", err)
	}

	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	attrs, err := o.compile(kind, names, relPath)
	if err != nil {
		t.Fatalf("dataload: %v", err)
	}

	callerDir := filepath.Dir(callerFile)
	rootDir, err := locate.FindRoot(nil, callerDir)
	if err != nil {
		rootDir = callerDir
	}
	cfg := projectConfig(rootDir)
	searchRoot := rootDir
	if cfg.RootDir != "" {
		if filepath.IsAbs(cfg.RootDir) {
			searchRoot = filepath.Clean(cfg.RootDir)
		} else {
			searchRoot = filepath.Join(rootDir, cfg.RootDir)
		}
	}

	dataPath, err := resolver.Resolve(locate.Query{
		DirName:    cfg.EffectiveDirName(),
		Root:       searchRoot,
		RelPath:    relPath,
		SearchFrom: callerFile,
		WantFile:   kind.TargetsFile(),
	})
	if err != nil {
		t.Fatalf("dataload: %v", err)
	}

	log := o.logger
	if log == nil {
		log = logging.NewFuncLogger(t.Logf, cfg.Verbose)
	}
	strip := cfg.EffectiveStrip()
	if o.stripSet {
		strip = o.strip
	}

	engineCfg := loader.Config{
		Path:                    dataPath,
		Attrs:                   attrs,
		StripTrailingWhitespace: strip,
		SearchFrom:              callerDir,
		Logger:                  log,
	}

	var items []core.Item
	if kind == core.ParametrizeDir {
		dl, err := loader.NewDirectoryLoader(engineCfg, func(fl *loader.FileLoader) {
			t.Cleanup(fl.ClearCache)
		})
		if err != nil {
			t.Fatalf("dataload: %v", err)
		}
		if items, err = dl.Load(); err != nil {
			t.Fatalf("dataload: %v", err)
		}
	} else {
		fl, err := loader.NewFileLoader(engineCfg)
		if err != nil {
			t.Fatalf("dataload: %v", err)
		}
		t.Cleanup(fl.ClearCache)
		if items, err = fl.Load(); err != nil {
			t.Fatalf("dataload: %v", err)
		}
	}

	if kind == core.LoadFile {
		// a single-file load binds directly, without a subtest
		data, err := items[0].Resolve()
		if err != nil {
			t.Fatalf("dataload: failed to resolve %s: %v", items[0].Path(), err)
		}
		run(t, Param{Path: items[0].Path(), Data: data})
		return
	}

	if len(items) == 0 {
		t.Skipf("dataload: no test data found for %s", relPath)
	}

	for _, item := range items {
		item := item
		id, marks := caseMeta(kind, item)
		t.Run(id, func(t *testing.T) {
			if slices.Contains(marks, MarkSkip) {
				t.Skipf("dataload: skipped by marker")
			}
			data, err := item.Resolve()
			if err != nil {
				t.Fatalf("dataload: failed to resolve %s: %v", item.Path(), err)
			}
			run(t, Param{Path: item.Path(), Data: data})
		})
	}
}

// caseMeta determines the subtest name and marks for one item. Parts carry
// their metadata from the collection scan; directory items default to the
// file name and eagerly split values to their content.
func caseMeta(kind core.LoaderKind, item core.Item) (id string, marks []string) {
	if item.Kind == core.ItemPart {
		meta := item.Part.TakeMeta()
		id, marks = meta.ID, meta.Marks
		if id == "" {
			id = item.Part.DefaultID()
		}
		return id, marks
	}

	id, marks = item.ID, item.Marks
	if id == "" && kind.SplitsContent() && item.Kind == core.ItemValue {
		id = fmt.Sprint(item.Value.Data)
	}
	if id == "" {
		id = item.DefaultID()
	}
	return id, marks
}
