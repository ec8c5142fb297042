package dataload_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataload-go/dataload"
)

func TestLoad_TextFile(t *testing.T) {
	dataload.Load(t, "data", "greeting.txt", func(t *testing.T, p dataload.Param) {
		assert.Equal(t, "foo\nbar", p.Data)
		assert.Equal(t, "greeting.txt", p.FileName())
	})
}

func TestLoad_JSONFile(t *testing.T) {
	dataload.Load(t, "file_path, data", "config.json", func(t *testing.T, p dataload.Param) {
		obj, ok := p.Data.(dataload.Object)
		require.True(t, ok, "expected ordered object, got %T", p.Data)
		assert.Equal(t, []string{"zeta", "alpha"}, obj.Keys())
	})
}

func TestLoad_Eager(t *testing.T) {
	dataload.Load(t, "data", "greeting.txt", func(t *testing.T, p dataload.Param) {
		assert.Equal(t, "foo\nbar", p.Data)
	}, dataload.WithLazyLoading(false))
}

func TestParametrize_Lines(t *testing.T) {
	var got []string
	dataload.Parametrize(t, "line", "cases.txt", func(t *testing.T, p dataload.Param) {
		got = append(got, p.Data.(string))
	})
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, got)
}

func TestParametrize_SubtestNames(t *testing.T) {
	var names []string
	dataload.Parametrize(t, "line", "cases.txt", func(t *testing.T, p dataload.Param) {
		names = append(names, t.Name())
	}, dataload.WithIDFunc(func(line string) string {
		return "case_" + line
	}))

	require.Len(t, names, 3)
	assert.True(t, strings.HasSuffix(names[0], "case_alpha"), "got %q", names[0])
}

func TestParametrize_JSONArray(t *testing.T) {
	var ns []float64
	dataload.Parametrize(t, "record", "cases.json", func(t *testing.T, p dataload.Param) {
		obj, ok := p.Data.(dataload.Object)
		require.True(t, ok)
		ns = append(ns, obj[0].Value.(float64))
	})
	assert.Equal(t, []float64{1, 2}, ns)
}

func TestParametrize_ObjectMembers(t *testing.T) {
	var keys []string
	dataload.Parametrize(t, "member", "config.json", func(t *testing.T, p dataload.Param) {
		m, ok := p.Data.(dataload.Member)
		require.True(t, ok)
		keys = append(keys, m.Key)
	})
	assert.Equal(t, []string{"zeta", "alpha"}, keys)
}

func TestParametrize_FilterAndProcess(t *testing.T) {
	var got []string
	dataload.Parametrize(t, "line", "cases.txt", func(t *testing.T, p dataload.Param) {
		got = append(got, p.Data.(string))
	},
		dataload.WithFilter(func(line string) bool { return line != "beta" }),
		dataload.WithProcess(func(line string) string { return strings.ToUpper(line) }),
	)
	assert.Equal(t, []string{"ALPHA", "GAMMA"}, got)
}

func TestParametrize_SkipMark(t *testing.T) {
	var got []string
	dataload.Parametrize(t, "line", "cases.txt", func(t *testing.T, p dataload.Param) {
		got = append(got, p.Data.(string))
	}, dataload.WithMarker(func(line string) string {
		if line == "beta" {
			return dataload.MarkSkip
		}
		return ""
	}))
	assert.Equal(t, []string{"alpha", "gamma"}, got)
}

func TestParametrize_CustomParametrizer(t *testing.T) {
	var got []string
	dataload.Parametrize(t, "field", "greeting.txt", func(t *testing.T, p dataload.Param) {
		got = append(got, p.Data.(string))
	}, dataload.WithParametrizer(func(data string) []string {
		return strings.Split(data, "\n")
	}))
	assert.Equal(t, []string{"foo", "bar"}, got)
}

func TestParametrize_Eager(t *testing.T) {
	var got []string
	dataload.Parametrize(t, "line", "cases.txt", func(t *testing.T, p dataload.Param) {
		got = append(got, p.Data.(string))
	}, dataload.WithLazyLoading(false))
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, got)
}

func TestParametrizeDir(t *testing.T) {
	var files []string
	var contents []string
	dataload.ParametrizeDir(t, "data", "samples", func(t *testing.T, p dataload.Param) {
		files = append(files, p.FileName())
		contents = append(contents, p.Data.(string))
	})
	assert.Equal(t, []string{"a.txt", "b.txt"}, files)
	assert.Equal(t, []string{"sample a", "sample b"}, contents)
}

func TestParametrizeDir_FilterByPath(t *testing.T) {
	var files []string
	dataload.ParametrizeDir(t, "data", "samples", func(t *testing.T, p dataload.Param) {
		files = append(files, p.FileName())
	}, dataload.WithFilter(func(path string) bool {
		return strings.HasSuffix(path, "a.txt")
	}))
	assert.Equal(t, []string{"a.txt"}, files)
}

func TestRegisterReader_CustomExtension(t *testing.T) {
	upper := func(r io.Reader) (any, error) {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return strings.ToUpper(string(b)), nil
	}
	require.NoError(t, dataload.RegisterReader(".up", upper))
	t.Cleanup(func() { dataload.UnregisterReader(".up") })

	dataload.Load(t, "data", "custom.up", func(t *testing.T, p dataload.Param) {
		assert.Equal(t, "SHOUTED", p.Data)
	})
}

func TestParametrize_CSVReader(t *testing.T) {
	var rows [][]string
	dataload.Parametrize(t, "row", "table.csv", func(t *testing.T, p dataload.Param) {
		rows = append(rows, p.Data.([]string))
	}, dataload.WithReader(dataload.CSVReader(',')))

	assert.Equal(t, [][]string{{"a", "1"}, {"b", "2"}}, rows)
}

func TestRegisterReader_YAML(t *testing.T) {
	require.NoError(t, dataload.RegisterReader(".yaml", dataload.YAMLReader()))
	t.Cleanup(func() { dataload.UnregisterReader(".yaml") })

	dataload.Load(t, "data", "settings.yaml", func(t *testing.T, p dataload.Param) {
		obj, ok := p.Data.(dataload.Object)
		require.True(t, ok, "expected ordered object, got %T", p.Data)
		assert.Equal(t, []string{"zeta", "alpha"}, obj.Keys())
	})
}
