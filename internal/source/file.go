// Package source loads template files and maps byte offsets back to line and
// column positions for diagnostics.
package source

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"fortio.org/safecast"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/conneroisu/templex/internal/errors"
)

// File is a loaded template source.
type File struct {
	Path    string
	Content string
	lines   []uint32 // offsets of line starts
}

// Pos is a 1-based line and byte column.
type Pos struct {
	Line   int `json:"line" yaml:"line" msgpack:"line"`
	Column int `json:"column" yaml:"column" msgpack:"column"`
}

// String implements fmt.Stringer.
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// NewFile wraps already decoded content.
func NewFile(path, content string) *File {
	return &File{
		Path:    path,
		Content: content,
		lines:   buildLineIndex(content),
	}
}

// Load reads path, decodes UTF-8 or BOM-marked UTF-16 to UTF-8, drops a
// UTF-8 BOM and normalizes CRLF line endings.
func Load(path string) (*File, error) {
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO(err, errors.CodeReadSource, "reading template").
			WithLocation(path, 0, 0)
	}

	content, err := Decode(raw)
	if err != nil {
		return nil, errors.WrapIO(err, errors.CodeDecodeSource, "decoding template").
			WithLocation(path, 0, 0)
	}

	return NewFile(path, content), nil
}

// Decode converts raw bytes to normalized UTF-8 text.
func Decode(raw []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", err
	}
	out = bytes.ReplaceAll(out, []byte("\r\n"), []byte("\n"))
	return string(out), nil
}

func buildLineIndex(content string) []uint32 {
	lines := []uint32{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, uint32(i+1)) // #nosec G115 -- checked in Position
		}
	}
	return lines
}

// Position maps a byte offset to a line and column. Offsets past the end
// clamp to the end of the file.
func (f *File) Position(off int) Pos {
	if off > len(f.Content) {
		off = len(f.Content)
	}
	if off < 0 {
		off = 0
	}
	o, err := safecast.Conv[uint32](off)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}

	line := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > o }) - 1
	return Pos{Line: line + 1, Column: int(o-f.lines[line]) + 1}
}

// Line returns the text of the 1-based line n without its newline.
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.lines) {
		return ""
	}
	start := int(f.lines[n-1])
	end := len(f.Content)
	if n < len(f.lines) {
		end = int(f.lines[n]) - 1
	}
	return f.Content[start:end]
}

// Snippet renders the line containing off with a caret under the offending
// column. Indentation accounts for wide runes and tabs.
func (f *File) Snippet(off int) string {
	pos := f.Position(off)
	line := f.Line(pos.Line)

	prefix := line
	if pos.Column-1 <= len(line) {
		prefix = line[:pos.Column-1]
	}

	var pad strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}

	return fmt.Sprintf("%4d | %s\n     | %s^", pos.Line, line, pad.String())
}

// Locate fills in the file location of a scan error from its offset.
func (f *File) Locate(err *errors.TemplexError) *errors.TemplexError {
	pos := f.Position(err.Offset)
	return err.WithLocation(f.Path, pos.Line, pos.Column)
}
