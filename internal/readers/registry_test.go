package readers

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataload-go/dataload/pkg/dataload"
)

func upperReader(r io.Reader) (any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(string(b)), nil
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("/proj", ".data", upperReader, dataload.ReadOptions{}))

	r, ok := reg.Lookup("/proj/tests", ".data")
	require.True(t, ok)

	out, err := r.Reader(strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, "ABC", out)
}

func TestRegistry_DeepestScopeWins(t *testing.T) {
	reg := NewRegistry()
	outer := func(r io.Reader) (any, error) { return "outer", nil }
	inner := func(r io.Reader) (any, error) { return "inner", nil }
	require.NoError(t, reg.Register("/proj", ".data", outer, dataload.ReadOptions{}))
	require.NoError(t, reg.Register("/proj/sub", ".data", inner, dataload.ReadOptions{}))

	r, ok := reg.Lookup("/proj/sub/tests", ".data")
	require.True(t, ok)
	out, _ := r.Reader(nil)
	assert.Equal(t, "inner", out)

	r, ok = reg.Lookup("/proj/other", ".data")
	require.True(t, ok)
	out, _ = r.Reader(nil)
	assert.Equal(t, "outer", out)
}

func TestRegistry_ScopeDoesNotLeakSideways(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("/proj/a", ".data", upperReader, dataload.ReadOptions{}))

	_, ok := reg.Lookup("/proj/b", ".data")
	assert.False(t, ok)

	// prefix of the directory name is not containment
	_, ok = reg.Lookup("/proj/ab", ".data")
	assert.False(t, ok)
}

func TestRegistry_DefaultJSONReader(t *testing.T) {
	reg := NewRegistry()

	r, ok := reg.Lookup("/anywhere", ".json")
	require.True(t, ok)

	out, err := r.Reader(strings.NewReader(`{"b": 1, "a": 2}`))
	require.NoError(t, err)

	obj, ok := out.(dataload.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, obj.Keys())
}

func TestRegistry_RegisteredOverridesDefault(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("/proj", ".json", upperReader, dataload.ReadOptions{}))

	r, ok := reg.Lookup("/proj/tests", ".json")
	require.True(t, ok)
	out, err := r.Reader(strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "X", out)
}

func TestRegistry_Unregister(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("/proj", ".data", upperReader, dataload.ReadOptions{}))
	reg.Unregister("/proj", ".data")

	_, ok := reg.Lookup("/proj/tests", ".data")
	assert.False(t, ok)
}

func TestRegistry_RejectsBadExtension(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register("/proj", "data", upperReader, dataload.ReadOptions{})
	assert.ErrorContains(t, err, "must start with '.'")
}

func TestRegistry_RejectsNilReader(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register("/proj", ".data", nil, dataload.ReadOptions{})
	assert.ErrorContains(t, err, "nil")
}
