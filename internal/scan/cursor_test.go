package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorAdv(t *testing.T) {
	c := New("hello world")
	next := c.Adv(6)

	assert.Equal(t, "world", next.Rest)
	assert.Equal(t, uint32(6), next.Off)
	assert.Equal(t, "hello world", c.Rest, "original cursor must not change")
	assert.Equal(t, len(c.Rest)+int(c.Off), len(next.Rest)+int(next.Off))
}

func TestCursorAdvPastEnd(t *testing.T) {
	c := New("abc")
	assert.Panics(t, func() { c.Adv(4) })
	assert.NotPanics(t, func() { c.Adv(3) })
}

func TestCursorFind(t *testing.T) {
	c := New("a{{b}}")

	i, ok := c.Find('{')
	require.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = c.AdvFind(3, '}')
	require.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = c.Find('x')
	assert.False(t, ok)

	i, ok = c.FindString("}}")
	require.True(t, ok)
	assert.Equal(t, 4, i)
}

func TestCursorStartsWith(t *testing.T) {
	c := New("{{# if }}")
	assert.True(t, c.StartsWith("{{"))
	assert.False(t, c.StartsWith("}}"))
	assert.True(t, c.AdvStartsWith(2, "#"))
	assert.False(t, c.AdvStartsWith(2, "/"))
}

func TestCursorSince(t *testing.T) {
	start := New("abcdef")
	end := start.Adv(4)
	assert.Equal(t, "abcd", end.Since(start))
	assert.Equal(t, "", start.Since(start))
}

func TestCursorLenEmpty(t *testing.T) {
	c := New("ab")
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.IsEmpty())
	assert.True(t, c.Adv(2).IsEmpty())
}

func TestLexErrorIs(t *testing.T) {
	c := New("abc").Adv(2)

	next := NextAt(c)
	assert.True(t, IsNext(next))
	assert.False(t, IsFail(next))

	fail := FailAt(c)
	assert.True(t, IsFail(fail))
	assert.False(t, IsNext(fail))

	off, ok := Offset(fail)
	require.True(t, ok)
	assert.Equal(t, uint32(2), off)
	assert.Contains(t, fail.Error(), "fail at offset 2")
}
