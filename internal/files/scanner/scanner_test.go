package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataload-go/dataload/internal/files/filesystem"
	"github.com/dataload-go/dataload/pkg/dataload"
)

func newTestFS(t *testing.T, content string) *filesystem.MemoryFileSystem {
	t.Helper()
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("lines.txt", content)
	return mfs
}

func offsets(entries []Entry) []int64 {
	out := make([]int64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Offset)
	}
	return out
}

func TestScanLines_Offsets(t *testing.T) {
	mfs := newTestFS(t, "alpha\nbeta\ngamma\n")
	s := NewScannerWithFS(mfs)

	entries, err := s.ScanLines("lines.txt", true, Callbacks{})
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 6, 11}, offsets(entries))
}

func TestScanLines_LastLineWithoutNewline(t *testing.T) {
	mfs := newTestFS(t, "alpha\nbeta")
	s := NewScannerWithFS(mfs)

	entries, err := s.ScanLines("lines.txt", true, Callbacks{})
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 6}, offsets(entries))
}

func TestScanLines_CRLF(t *testing.T) {
	mfs := newTestFS(t, "alpha\r\nbeta\r\n")
	s := NewScannerWithFS(mfs)

	var seen []string
	filter, err := dataload.NewCallback("filter", func(line string) bool {
		seen = append(seen, line)
		return true
	})
	require.NoError(t, err)

	entries, err := s.ScanLines("lines.txt", true, Callbacks{Filter: filter})
	require.NoError(t, err)

	// offsets count the raw bytes including \r\n
	assert.Equal(t, []int64{0, 7}, offsets(entries))
	// callbacks see the line without its terminator
	assert.Equal(t, []string{"alpha", "beta"}, seen)
}

func TestScanLines_TrailingWhitespaceDropped(t *testing.T) {
	mfs := newTestFS(t, "alpha\n\n  \n")
	s := NewScannerWithFS(mfs)

	entries, err := s.ScanLines("lines.txt", true, Callbacks{})
	require.NoError(t, err)

	assert.Equal(t, []int64{0}, offsets(entries))
}

func TestScanLines_InteriorBlankLinesKept(t *testing.T) {
	// blank lines followed by content are interior and must be kept in order
	mfs := newTestFS(t, "alpha\n\n\nbeta\n\n")
	s := NewScannerWithFS(mfs)

	entries, err := s.ScanLines("lines.txt", true, Callbacks{})
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 6, 7, 8}, offsets(entries))
}

func TestScanLines_NoStripKeepsTrailingBlanks(t *testing.T) {
	mfs := newTestFS(t, "alpha\n\n\n")
	s := NewScannerWithFS(mfs)

	entries, err := s.ScanLines("lines.txt", false, Callbacks{})
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 6, 7}, offsets(entries))
}

func TestScanLines_EmptyFile(t *testing.T) {
	mfs := newTestFS(t, "")
	s := NewScannerWithFS(mfs)

	entries, err := s.ScanLines("lines.txt", true, Callbacks{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScanLines_WhitespaceOnlyFile(t *testing.T) {
	mfs := newTestFS(t, "\n  \n\t\n")
	s := NewScannerWithFS(mfs)

	entries, err := s.ScanLines("lines.txt", true, Callbacks{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScanLines_FilterSkipsLines(t *testing.T) {
	mfs := newTestFS(t, "# comment\nalpha\n# other\nbeta\n")
	s := NewScannerWithFS(mfs)

	filter, err := dataload.NewCallback("filter", func(line string) bool {
		return !strings.HasPrefix(line, "#")
	})
	require.NoError(t, err)

	entries, err := s.ScanLines("lines.txt", true, Callbacks{Filter: filter})
	require.NoError(t, err)

	assert.Equal(t, []int64{10, 24}, offsets(entries))
}

func TestScanLines_MarkerAndID(t *testing.T) {
	mfs := newTestFS(t, "slow case\nfast case\n")
	s := NewScannerWithFS(mfs)

	marker, err := dataload.NewCallback("marker", func(line string) []string {
		if strings.HasPrefix(line, "slow") {
			return []string{"slow"}
		}
		return nil
	})
	require.NoError(t, err)

	id, err := dataload.NewCallback("id", func(path, line string) string {
		return strings.Fields(line)[0]
	})
	require.NoError(t, err)

	entries, err := s.ScanLines("lines.txt", true, Callbacks{Marker: marker, ID: id})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, []string{"slow"}, entries[0].Marks)
	assert.Equal(t, "slow", entries[0].ID)
	assert.Empty(t, entries[1].Marks)
	assert.Equal(t, "fast", entries[1].ID)
}

func TestScanLines_MissingFile(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	s := NewScannerWithFS(mfs)

	_, err := s.ScanLines("missing.txt", true, Callbacks{})
	assert.ErrorContains(t, err, "failed to open")
}
