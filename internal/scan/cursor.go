// Package scan provides an immutable, zero-copy cursor over template source
// and the parsing combinators built on it.
//
// Every parser has the shape
//
//	func(Cursor) (Cursor, T, error)
//
// and reports failure with a *LexError of one of two kinds. Next means "this
// production does not match here, try a sibling" and always comes back with
// the input cursor. Fail means the whole parse attempt must be abandoned.
// Only Opt turns either kind into success.
package scan

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// Cursor is a snapshot of the remaining source and its absolute byte offset.
// For cursors derived from one source, len(Rest)+Off is constant.
type Cursor struct {
	Rest string
	Off  uint32
}

// New creates a cursor at the start of src.
func New(src string) Cursor {
	if _, err := safecast.Conv[uint32](len(src)); err != nil {
		panic(fmt.Errorf("source too large: %w", err))
	}
	return Cursor{Rest: src}
}

// Adv returns a cursor n bytes further in. It panics if n exceeds Len.
func (c Cursor) Adv(n int) Cursor {
	if n < 0 || n > len(c.Rest) {
		panic(fmt.Sprintf("scan: advance %d past end of input (%d bytes left)", n, len(c.Rest)))
	}
	return Cursor{
		Rest: c.Rest[n:],
		Off:  c.Off + uint32(n), // #nosec G115 -- bounded by New
	}
}

// Find returns the byte offset of the next b.
func (c Cursor) Find(b byte) (int, bool) {
	i := strings.IndexByte(c.Rest, b)
	return i, i >= 0
}

// AdvFind is Find starting n bytes in; the offset is relative to that point.
func (c Cursor) AdvFind(n int, b byte) (int, bool) {
	i := strings.IndexByte(c.Rest[n:], b)
	return i, i >= 0
}

// FindString returns the byte offset of the next occurrence of s.
func (c Cursor) FindString(s string) (int, bool) {
	i := strings.Index(c.Rest, s)
	return i, i >= 0
}

// StartsWith reports whether the remaining input begins with s.
func (c Cursor) StartsWith(s string) bool {
	return strings.HasPrefix(c.Rest, s)
}

// AdvStartsWith reports whether the input n bytes in begins with s.
func (c Cursor) AdvStartsWith(n int, s string) bool {
	return strings.HasPrefix(c.Rest[n:], s)
}

// Len returns the number of bytes left.
func (c Cursor) Len() int {
	return len(c.Rest)
}

// IsEmpty reports whether the input is exhausted.
func (c Cursor) IsEmpty() bool {
	return len(c.Rest) == 0
}

// Since returns the source consumed between start and c. Both cursors must
// come from the same source and start must not be ahead of c.
func (c Cursor) Since(start Cursor) string {
	return start.Rest[:c.Off-start.Off]
}

// String implements fmt.Stringer.
func (c Cursor) String() string {
	const preview = 16
	rest := c.Rest
	if len(rest) > preview {
		rest = rest[:preview] + "..."
	}
	return fmt.Sprintf("@%d %q", c.Off, rest)
}
