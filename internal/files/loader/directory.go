package loader

import (
	"fmt"
	"path/filepath"

	"github.com/dataload-go/dataload/pkg/dataload"
)

// DirectoryLoader loads every eligible file under a directory, one test
// parameter per file. Hidden files (dot-prefixed) are skipped; files load in
// lexicographic name order, and with Recursive set, subdirectories follow
// their parent's files, also in name order.
type DirectoryLoader struct {
	cfg Config

	// track, when non-nil, observes every per-file loader created during
	// Load so the host can register its cache teardown.
	track func(*FileLoader)
}

// NewDirectoryLoader creates a loader for the directory at cfg.Path.
func NewDirectoryLoader(cfg Config, track func(*FileLoader)) (*DirectoryLoader, error) {
	cfg.applyDefaults()
	if !filepath.IsAbs(cfg.Path) {
		return nil, fmt.Errorf("loader path must be absolute: %s", cfg.Path)
	}
	if cfg.Attrs.Kind.TargetsFile() {
		return nil, dataload.Usagef(cfg.Attrs.Kind.String(), cfg.Path,
			"the %s loader cannot load a directory", cfg.Attrs.Kind)
	}
	return &DirectoryLoader{cfg: cfg, track: track}, nil
}

// Path returns the absolute path of the data directory.
func (d *DirectoryLoader) Path() string { return d.cfg.Path }

// Load walks the directory and produces one parameter per accepted file.
// An empty directory yields no parameters and no error.
func (d *DirectoryLoader) Load() ([]dataload.Item, error) {
	return d.loadDir(d.cfg.Path)
}

func (d *DirectoryLoader) loadDir(dir string) ([]dataload.Item, error) {
	entries, err := d.cfg.FS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory %s: %w", dir, err)
	}

	var items []dataload.Item
	var subdirs []string
	for _, entry := range entries {
		name := entry.Name()
		if len(name) > 0 && name[0] == '.' {
			continue
		}
		if entry.IsDir() {
			if d.cfg.Attrs.Recursive {
				subdirs = append(subdirs, filepath.Join(dir, name))
			}
			continue
		}

		filePath := filepath.Join(dir, name)
		item, ok, err := d.loadFile(filePath)
		if err != nil {
			return nil, err
		}
		if ok {
			items = append(items, item)
		}
	}

	for _, sub := range subdirs {
		subItems, err := d.loadDir(sub)
		if err != nil {
			return nil, err
		}
		items = append(items, subItems...)
	}
	return items, nil
}

func (d *DirectoryLoader) loadFile(filePath string) (dataload.Item, bool, error) {
	attrs := d.cfg.Attrs
	if attrs.Filter != nil {
		keep, err := attrs.Filter.CallPathFilter(filePath)
		if err != nil {
			return dataload.Item{}, false, err
		}
		if !keep {
			return dataload.Item{}, false, nil
		}
	}

	// Per-file attributes: same kind and laziness, but the splitting and
	// metadata callbacks stay with the directory walk.
	fileAttrs := &dataload.LoadAttrs{
		Kind:        attrs.Kind,
		LazyLoading: attrs.LazyLoading,
		Process:     attrs.Process,
		ReadOptions: attrs.ReadOptions,
		Reader:      attrs.Reader,
	}
	if attrs.ReaderFor != nil {
		if r := attrs.ReaderFor(filePath); r != nil {
			fileAttrs.Reader = r
		}
	}
	if attrs.ReadOptionsFor != nil {
		opts := attrs.ReadOptionsFor(filePath)
		if err := opts.Validate(); err != nil {
			return dataload.Item{}, false, err
		}
		fileAttrs.ReadOptions = opts
	}

	fileCfg := d.cfg
	fileCfg.Path = filePath
	fileCfg.Attrs = fileAttrs
	fl, err := NewFileLoader(fileCfg)
	if err != nil {
		return dataload.Item{}, false, err
	}
	if d.track != nil {
		d.track(fl)
	}

	var item dataload.Item
	if attrs.LazyLoading {
		deferred := dataload.NewDeferred(filePath, fl.loadSingle, nil)
		item = dataload.Item{Kind: dataload.ItemDeferred, Deferred: deferred}
	} else {
		v, err := fl.loadSingle()
		if err != nil {
			return dataload.Item{}, false, err
		}
		item = dataload.Item{Kind: dataload.ItemValue, Value: v}
	}

	if attrs.Marker != nil {
		out, err := attrs.Marker.CallPath(filePath)
		if err != nil {
			return dataload.Item{}, false, err
		}
		if item.Marks, err = dataload.MarksOf(out); err != nil {
			return dataload.Item{}, false, err
		}
	}
	return item, true, nil
}
