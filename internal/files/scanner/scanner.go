package scanner

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dataload-go/dataload/internal/files/filesystem"
	"github.com/dataload-go/dataload/pkg/dataload"
)

// Entry describes one line selected by a scan: the byte offset where the
// line starts, plus any per-line metadata the callbacks produced.
type Entry struct {
	Offset int64
	Marks  []string
	ID     string
}

// Callbacks are the optional per-line hooks applied during a scan.
// Each receives the line with its terminator removed.
type Callbacks struct {
	// Filter decides whether the line becomes a part at all
	Filter *dataload.Callback
	// Marker computes marks attached to the part
	Marker *dataload.Callback
	// ID computes the part's parameter id
	ID *dataload.Callback
}

// Scanner enumerates line parts of a text file without retaining its content.
// Only byte offsets and per-line metadata survive the scan, so an arbitrarily
// large file costs one buffered pass and O(lines) memory.
// Scanner is safe for concurrent use as long as the provider is.
type Scanner struct {
	fsProvider filesystem.Provider
}

// NewScanner creates a scanner reading through the OS filesystem.
func NewScanner() *Scanner {
	return &Scanner{fsProvider: filesystem.NewOSFileSystem()}
}

// NewScannerWithFS creates a scanner with a custom filesystem provider.
// This is primarily useful for testing with in-memory filesystems.
// Panics if fsProvider is nil.
func NewScannerWithFS(fsProvider filesystem.Provider) *Scanner {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{fsProvider: fsProvider}
}

// ScanLines reads the file at path line by line and returns one Entry per
// line that should become a test parameter.
//
// When strip is true, whitespace-only lines are withheld in a buffer and
// emitted only once a later non-whitespace line proves they were interior;
// a whitespace-only run at EOF is trailing and produces no entries.
//
// The filter callback drops lines entirely (dropped lines are never
// buffered); marker and id run for every kept line.
func (s *Scanner) ScanLines(path string, strip bool, cbs Callbacks) ([]Entry, error) {
	f, err := s.fsProvider.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var (
		results []Entry
		buffer  []Entry
		pos     int64
	)

	r := bufio.NewReader(f)
	for {
		raw, readErr := r.ReadString('\n')
		if len(raw) == 0 {
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				return nil, fmt.Errorf("failed to scan %s: %w", path, readErr)
			}
		}

		offset := pos
		pos += int64(len(raw))
		line := strings.TrimRight(raw, "\r\n")

		keep := true
		if cbs.Filter != nil {
			keep, err = cbs.Filter.CallFilter(path, line)
			if err != nil {
				return nil, err
			}
		}
		if keep {
			entry := Entry{Offset: offset}
			if cbs.Marker != nil {
				out, err := cbs.Marker.Call(path, line)
				if err != nil {
					return nil, err
				}
				entry.Marks, err = dataload.MarksOf(out)
				if err != nil {
					return nil, err
				}
			}
			if cbs.ID != nil {
				out, err := cbs.ID.Call(path, line)
				if err != nil {
					return nil, err
				}
				entry.ID = dataload.IDOf(out)
			}

			if strip && strings.TrimSpace(line) == "" {
				buffer = append(buffer, entry)
			} else {
				if len(buffer) > 0 {
					results = append(results, buffer...)
					buffer = buffer[:0]
				}
				results = append(results, entry)
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", path, readErr)
		}
	}

	// anything still buffered was trailing whitespace
	return results, nil
}
