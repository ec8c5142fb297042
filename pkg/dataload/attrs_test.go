package dataload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataload-go/dataload/pkg/dataload"
)

func TestParseFixtureNames(t *testing.T) {
	tests := []struct {
		raw     string
		want    []string
		wantErr bool
	}{
		{raw: "data", want: []string{"data"}},
		{raw: "file_path, data", want: []string{"file_path", "data"}},
		{raw: "file_path,data", want: []string{"file_path", "data"}},
		{raw: "a, b, c", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "not an identifier", wantErr: true},
		{raw: "data,", wantErr: true},
		{raw: "1st", wantErr: true},
		{raw: "func", wantErr: true}, // keywords are not identifiers
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := dataload.ParseFixtureNames(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, dataload.ErrUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func validAttrs(kind dataload.LoaderKind) dataload.LoadAttrs {
	return dataload.LoadAttrs{
		Kind:         kind,
		FixtureNames: []string{"data"},
		RelPath:      "cases.txt",
	}
}

func mustCallback(t *testing.T, name string, fn any) *dataload.Callback {
	t.Helper()
	cb, err := dataload.NewCallback(name, fn)
	require.NoError(t, err)
	return cb
}

func TestLoadAttrs_Validate(t *testing.T) {
	identity := func(v any) any { return v }

	tests := []struct {
		name    string
		mutate  func(t *testing.T, a *dataload.LoadAttrs)
		wantErr bool
	}{
		{"valid load", func(t *testing.T, a *dataload.LoadAttrs) {}, false},
		{"two fixture names", func(t *testing.T, a *dataload.LoadAttrs) {
			a.FixtureNames = []string{"file_path", "data"}
		}, false},
		{"no fixture names", func(t *testing.T, a *dataload.LoadAttrs) {
			a.FixtureNames = nil
		}, true},
		{"illegal fixture name", func(t *testing.T, a *dataload.LoadAttrs) {
			a.FixtureNames = []string{"no spaces"}
		}, true},
		{"empty path", func(t *testing.T, a *dataload.LoadAttrs) { a.RelPath = "" }, true},
		{"dot path", func(t *testing.T, a *dataload.LoadAttrs) { a.RelPath = "." }, true},
		{"parent path", func(t *testing.T, a *dataload.LoadAttrs) { a.RelPath = ".." }, true},
		{"absolute path", func(t *testing.T, a *dataload.LoadAttrs) { a.RelPath = "/etc/cases.txt" }, true},
		{"recursive on file load", func(t *testing.T, a *dataload.LoadAttrs) { a.Recursive = true }, true},
		{"reader override on file load", func(t *testing.T, a *dataload.LoadAttrs) {
			a.ReaderFor = func(string) dataload.Reader { return nil }
		}, true},
		{"bad read mode", func(t *testing.T, a *dataload.LoadAttrs) {
			a.ReadOptions.Mode = "rb"
		}, true},
		{"bad encoding", func(t *testing.T, a *dataload.LoadAttrs) {
			a.ReadOptions.Encoding = "not-a-charset"
		}, true},
		{"parametrizer on plain load", func(t *testing.T, a *dataload.LoadAttrs) {
			a.Parametrizer = mustCallback(t, "parametrizer", identity)
		}, true},
		{"id on plain load", func(t *testing.T, a *dataload.LoadAttrs) {
			a.ID = mustCallback(t, "id", identity)
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAttrs(dataload.LoadFile)
			tt.mutate(t, &a)
			err := a.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, dataload.ErrUsage)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoadAttrs_Validate_KindRestrictions(t *testing.T) {
	identity := func(v any) any { return v }

	a := validAttrs(dataload.ParametrizeFile)
	a.Parametrizer = mustCallback(t, "parametrizer", identity)
	a.Filter = mustCallback(t, "filter", func(v any) bool { return true })
	a.Process = mustCallback(t, "process", identity)
	a.Marker = mustCallback(t, "marker", identity)
	a.ID = mustCallback(t, "id", identity)
	require.NoError(t, a.Validate(), "parametrize accepts all record callbacks")

	d := validAttrs(dataload.ParametrizeDir)
	d.OnLoad = mustCallback(t, "onload", identity)
	err := d.Validate()
	require.Error(t, err, "onload is file-scoped, not directory-scoped")
	assert.ErrorIs(t, err, dataload.ErrUsage)

	d = validAttrs(dataload.ParametrizeDir)
	d.Recursive = true
	require.NoError(t, d.Validate())
}

func TestLoadAttrs_WantsFilePath(t *testing.T) {
	a := validAttrs(dataload.LoadFile)
	assert.False(t, a.WantsFilePath())
	a.FixtureNames = []string{"file_path", "data"}
	assert.True(t, a.WantsFilePath())
}

func TestReadOptions_IsDefaultText(t *testing.T) {
	assert.True(t, dataload.ReadOptions{}.IsDefaultText())
	assert.True(t, dataload.ReadOptions{Mode: dataload.ModeText}.IsDefaultText())
	assert.False(t, dataload.ReadOptions{Mode: dataload.ModeBinary}.IsDefaultText())
	assert.False(t, dataload.ReadOptions{Encoding: "latin1"}.IsDefaultText())
}

func TestReadOptions_Charset(t *testing.T) {
	enc, err := dataload.ReadOptions{Encoding: "latin1"}.Charset()
	require.NoError(t, err)
	require.NotNil(t, enc)

	enc, err = dataload.ReadOptions{}.Charset()
	require.NoError(t, err)
	assert.Nil(t, enc, "UTF-8 needs no transformation")
}
