package scan

import (
	"github.com/conneroisu/templex/internal/trim"
)

// Parser consumes a prefix of the cursor's input and produces a value.
// On error the returned cursor is the one the parser was given.
type Parser[T any] func(Cursor) (Cursor, T, error)

// Maybe is the result of Opt.
type Maybe[T any] struct {
	Value T
	Ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Maybe[T] {
	return Maybe[T]{Value: v, Ok: true}
}

// Both holds the results of Pair.
type Both[A, B any] struct {
	First  A
	Second B
}

// Tag matches the literal s. It consumes exactly len(s) bytes or returns
// Next without consuming anything.
func Tag(s string) Parser[string] {
	return func(c Cursor) (Cursor, string, error) {
		if !c.StartsWith(s) {
			return c, "", NextAt(c)
		}
		return c.Adv(len(s)), c.Rest[:len(s)], nil
	}
}

// TakeWhile consumes the longest run of runes satisfying pred. It never
// fails; an empty run returns the input cursor and "".
func TakeWhile(pred func(rune) bool) Parser[string] {
	return func(c Cursor) (Cursor, string, error) {
		n := spanWhile(c.Rest, pred)
		return c.Adv(n), c.Rest[:n], nil
	}
}

// TakeWhile1 is TakeWhile that returns Next on an empty run.
func TakeWhile1(pred func(rune) bool) Parser[string] {
	return func(c Cursor) (Cursor, string, error) {
		n := spanWhile(c.Rest, pred)
		if n == 0 {
			return c, "", NextAt(c)
		}
		return c.Adv(n), c.Rest[:n], nil
	}
}

// TakeUntil consumes everything before the next occurrence of s, leaving s
// unconsumed. It returns Next when s does not occur.
func TakeUntil(s string) Parser[string] {
	return func(c Cursor) (Cursor, string, error) {
		i, ok := c.FindString(s)
		if !ok {
			return c, "", NextAt(c)
		}
		return c.Adv(i), c.Rest[:i], nil
	}
}

func spanWhile(s string, pred func(rune) bool) int {
	for i, r := range s {
		if !pred(r) {
			return i
		}
	}
	return len(s)
}

// Opt runs p and always succeeds: a match yields Some, and any error, Fail
// included, yields the zero Maybe at the input cursor.
func Opt[T any](p Parser[T]) Parser[Maybe[T]] {
	return func(c Cursor) (Cursor, Maybe[T], error) {
		next, v, err := p(c)
		if err != nil {
			return c, Maybe[T]{}, nil
		}
		return next, Some(v), nil
	}
}

// Seq applies ps left to right, threading the cursor, and stops at the
// first error.
func Seq(ps ...Parser[string]) Parser[[]string] {
	return func(c Cursor) (Cursor, []string, error) {
		out := make([]string, 0, len(ps))
		cur := c
		for _, p := range ps {
			next, v, err := p(cur)
			if err != nil {
				return c, nil, err
			}
			out = append(out, v)
			cur = next
		}
		return cur, out, nil
	}
}

// Pair applies a then b.
func Pair[A, B any](a Parser[A], b Parser[B]) Parser[Both[A, B]] {
	return func(c Cursor) (Cursor, Both[A, B], error) {
		c1, va, err := a(c)
		if err != nil {
			return c, Both[A, B]{}, err
		}
		c2, vb, err := b(c1)
		if err != nil {
			return c, Both[A, B]{}, err
		}
		return c2, Both[A, B]{First: va, Second: vb}, nil
	}
}

// Preceded applies a then b and keeps b's value.
func Preceded[A, B any](a Parser[A], b Parser[B]) Parser[B] {
	return Map(Pair(a, b), func(v Both[A, B]) B { return v.Second })
}

// Terminated applies a then b and keeps a's value.
func Terminated[A, B any](a Parser[A], b Parser[B]) Parser[A] {
	return Map(Pair(a, b), func(v Both[A, B]) A { return v.First })
}

// Delimited applies open, p, close and keeps p's value.
func Delimited[A, B, C any](open Parser[A], p Parser[B], close Parser[C]) Parser[B] {
	return Preceded(open, Terminated(p, close))
}

// Alt tries each parser in turn at the same position. Next moves on to the
// following alternative; Fail is returned immediately.
func Alt[T any](ps ...Parser[T]) Parser[T] {
	return func(c Cursor) (Cursor, T, error) {
		for _, p := range ps {
			next, v, err := p(c)
			if err == nil {
				return next, v, nil
			}
			if !IsNext(err) {
				var zero T
				return c, zero, err
			}
		}
		var zero T
		return c, zero, NextAt(c)
	}
}

// Map transforms the value of a successful parse.
func Map[A, B any](p Parser[A], f func(A) B) Parser[B] {
	return func(c Cursor) (Cursor, B, error) {
		next, v, err := p(c)
		if err != nil {
			var zero B
			return c, zero, err
		}
		return next, f(v), nil
	}
}

// MapFail escalates any error from p to Fail at the input position. Use it
// once a production is committed.
func MapFail[T any](p Parser[T]) Parser[T] {
	return func(c Cursor) (Cursor, T, error) {
		next, v, err := p(c)
		if err != nil {
			var zero T
			return c, zero, FailAt(c)
		}
		return next, v, nil
	}
}

// Recognize returns the source span consumed by p.
func Recognize[T any](p Parser[T]) Parser[string] {
	return func(c Cursor) (Cursor, string, error) {
		next, _, err := p(c)
		if err != nil {
			return c, "", err
		}
		return next, next.Since(c), nil
	}
}

// IsWs reports whether r is insignificant whitespace.
func IsWs(r rune) bool {
	return trim.IsWS(r)
}

// Ws consumes a run of whitespace.
var Ws = TakeWhile(IsWs)

// SkipWs returns c past any leading whitespace.
func SkipWs(c Cursor) Cursor {
	next, _, _ := Ws(c)
	return next
}
