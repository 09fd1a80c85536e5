package errors

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplexErrorError(t *testing.T) {
	err := NewScanError(CodeUnterminated, "unterminated expression", 12).
		WithLocation("page.hbs", 3, 7)

	assert.Equal(t, "[UNTERMINATED] page.hbs:3:7 unterminated expression", err.Error())
	assert.False(t, err.Recoverable)

	wrapped := NewIOError(CodeSinkWrite, "writing output", fmt.Errorf("disk full"))
	assert.Equal(t, "[SINK_WRITE] writing output: disk full", wrapped.Error())
}

func TestTemplexErrorIs(t *testing.T) {
	err := NewIOError(CodeSinkWrite, "writing output", nil)

	assert.True(t, errors.Is(err, &TemplexError{Type: ErrorTypeIO, Code: CodeSinkWrite}))
	assert.False(t, errors.Is(err, &TemplexError{Type: ErrorTypeIO, Code: CodeReadSource}))
}

func TestWrapKeepsLocation(t *testing.T) {
	inner := NewScanError(CodeUnterminated, "unterminated", 4).WithLocation("a.hbs", 1, 5)
	outer := Wrap(inner, ErrorTypeScan, CodeUnterminated, "lexing a.hbs")

	require.NotNil(t, outer)
	assert.Equal(t, "a.hbs", outer.FilePath)
	assert.Equal(t, 1, outer.Line)
	assert.Equal(t, 4, outer.Offset)
	assert.Same(t, inner, errors.Unwrap(outer))

	assert.Nil(t, Wrap(nil, ErrorTypeIO, "X", "nothing"))
}

func TestWrapIO(t *testing.T) {
	cause := errors.New("broken pipe")
	err := WrapIO(cause, CodeSinkWrite, "writing output")

	assert.True(t, IsIOError(err))
	assert.False(t, IsRecoverable(err))
	assert.ErrorIs(t, err, cause)
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsScanError(NewScanError(CodeBadPipe, "bad", 0)))
	assert.False(t, IsScanError(errors.New("plain")))
	assert.True(t, IsRecoverable(NewValidationError("X", "y")))
	assert.False(t, IsRecoverable(errors.New("plain")))
}

func TestFormatError(t *testing.T) {
	err := NewScanError(CodeUnterminated, "unterminated comment", 0).WithLocation("x.hbs", 2, 1)
	assert.Equal(t, "scan error in x.hbs at line 2, column 1: unterminated comment", FormatError(err))
	assert.Equal(t, "plain", FormatError(errors.New("plain")))
	assert.Equal(t, "", FormatError(nil))
}

func TestAsTemplexError(t *testing.T) {
	inner := NewScanError(CodeUnterminated, "unterminated raw block", 4)
	te, ok := AsTemplexError(fmt.Errorf("lexing: %w", inner))
	require.True(t, ok)
	assert.Same(t, inner, te)

	_, ok = AsTemplexError(errors.New("plain"))
	assert.False(t, ok)
}

func TestValidationErrorCollection(t *testing.T) {
	var vec ValidationErrorCollection
	assert.False(t, vec.HasErrors())
	assert.Nil(t, vec.ToTemplexError())

	vec.AddField("lexer.open", "", "must not be empty", "{{")
	vec.AddField("server.port", 0, "must be between 1 and 65535")

	te := vec.ToTemplexError()
	require.NotNil(t, te)
	assert.Equal(t, ErrorTypeConfig, te.Type)
	assert.Contains(t, te.Message, "2 validation errors")
	assert.Equal(t, []string{"{{"}, te.Context["lexer.open"])
}

func TestErrorCollector(t *testing.T) {
	collector := NewErrorCollector()
	assert.False(t, collector.HasErrors())
	assert.NoError(t, collector.Err())

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			collector.Add(NewScanError(CodeUnterminated, "x", 10-i).WithLocation("b.hbs", 1, 1))
		}(i)
	}
	wg.Wait()
	collector.Add(NewScanError(CodeUnterminated, "x", 0).WithLocation("a.hbs", 1, 1))
	collector.Add(nil)
	collector.Add(errors.New("plain"))

	got := collector.GetErrors()
	require.Len(t, got, 11)
	assert.Equal(t, "a.hbs", got[0].FilePath)
	assert.Equal(t, 1, got[1].Offset)
	assert.Len(t, collector.GetErrorsByFile("b.hbs"), 10)
	assert.Error(t, collector.Err())

	collector.Clear()
	assert.False(t, collector.HasErrors())
}
