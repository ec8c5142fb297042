package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_ReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	fs := NewOSFileSystem()
	content, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestOSFileSystem_OpenFile_Seek(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lines.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0644))

	fs := NewOSFileSystem()
	h, err := fs.OpenFile(path)
	require.NoError(t, err)
	defer h.Close()

	_, err = h.Seek(4, io.SeekStart)
	require.NoError(t, err)

	rest, err := io.ReadAll(h)
	require.NoError(t, err)
	assert.Equal(t, "two\n", string(rest))
}

func TestOSFileSystem_ReadDir_Sorted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	fs := NewOSFileSystem()
	entries, err := fs.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "sub"}, names)
}

func TestOSFileSystem_ReadDir_Missing(t *testing.T) {
	fs := NewOSFileSystem()
	_, err := fs.ReadDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestOSFileSystem_Stat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0644))

	fs := NewOSFileSystem()
	info, err := fs.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())
	assert.False(t, info.IsDir())
}
