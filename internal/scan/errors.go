package scan

import (
	"errors"
	"fmt"
)

// Kind distinguishes recoverable from fatal scan errors.
type Kind int

const (
	// Fail aborts the current parse attempt.
	Fail Kind = iota
	// Next means this alternative did not match; try another one.
	Next
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Fail:
		return "fail"
	case Next:
		return "next"
	default:
		return "unknown"
	}
}

// LexError is the error returned by every parser in this package.
type LexError struct {
	Kind Kind
	Off  uint32
}

// Sentinels for errors.Is; they match any LexError of the same kind.
var (
	ErrFail = &LexError{Kind: Fail}
	ErrNext = &LexError{Kind: Next}
)

// Error implements the error interface.
func (e *LexError) Error() string {
	return fmt.Sprintf("scan %s at offset %d", e.Kind, e.Off)
}

// Is matches by kind only.
func (e *LexError) Is(target error) bool {
	var t *LexError
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// NextAt reports that nothing matched at c.
func NextAt(c Cursor) error {
	return &LexError{Kind: Next, Off: c.Off}
}

// FailAt reports an unrecoverable error at c.
func FailAt(c Cursor) error {
	return &LexError{Kind: Fail, Off: c.Off}
}

// IsNext reports whether err is a recoverable mismatch.
func IsNext(err error) bool {
	return errors.Is(err, ErrNext)
}

// IsFail reports whether err aborts the parse attempt.
func IsFail(err error) bool {
	return errors.Is(err, ErrFail)
}

// Offset returns the position carried by a LexError in err's chain.
func Offset(err error) (uint32, bool) {
	var le *LexError
	if errors.As(err, &le) {
		return le.Off, true
	}
	return 0, false
}
