package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/templex/internal/errors"
)

func TestPosition(t *testing.T) {
	f := NewFile("t.hbs", "ab\ncd\n\nef")

	testCases := []struct {
		off  int
		want Pos
	}{
		{0, Pos{1, 1}},
		{1, Pos{1, 2}},
		{2, Pos{1, 3}},
		{3, Pos{2, 1}},
		{6, Pos{3, 1}},
		{7, Pos{4, 1}},
		{9, Pos{4, 3}},
		{100, Pos{4, 3}},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, f.Position(tc.off), "offset %d", tc.off)
	}
	assert.Equal(t, "2:1", f.Position(3).String())
}

func TestLine(t *testing.T) {
	f := NewFile("t.hbs", "first\nsecond\nthird")
	assert.Equal(t, "first", f.Line(1))
	assert.Equal(t, "second", f.Line(2))
	assert.Equal(t, "third", f.Line(3))
	assert.Equal(t, "", f.Line(0))
	assert.Equal(t, "", f.Line(4))
}

func TestSnippet(t *testing.T) {
	f := NewFile("t.hbs", "<p>\n\t日本 {{ oops\n</p>")
	off := len("<p>\n\t日本 ")

	got := f.Snippet(off)
	assert.Equal(t, "   2 | \t日本 {{ oops\n     | \t     ^", got)
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name string
		raw  []byte
		want string
	}{
		{"plain", []byte("a\r\nb"), "a\nb"},
		{"utf8 bom", []byte("\xef\xbb\xbfhi"), "hi"},
		{"utf16le bom", []byte{0xff, 0xfe, 'h', 0, 'i', 0}, "hi"},
		{"utf16be bom", []byte{0xfe, 0xff, 0, 'h', 0, 'i'}, "hi"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.hbs")
	require.NoError(t, os.WriteFile(path, []byte("\xef\xbb\xbf<p>{{ x }}</p>\r\n"), 0600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)
	assert.Equal(t, "<p>{{ x }}</p>\n", f.Content)

	_, err = Load(filepath.Join(dir, "missing.hbs"))
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
}

func TestLocate(t *testing.T) {
	f := NewFile("page.hbs", "line\n  {{ x")
	err := f.Locate(errors.NewScanError(errors.CodeUnterminated, "unterminated", 7))

	assert.Equal(t, "page.hbs", err.FilePath)
	assert.Equal(t, 2, err.Line)
	assert.Equal(t, 3, err.Column)
}
