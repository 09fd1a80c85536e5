package lexer

import (
	"github.com/conneroisu/templex/internal/errors"
	"github.com/conneroisu/templex/internal/scan"
	"github.com/conneroisu/templex/internal/trim"
)

const pipeArrow = "=>"

var (
	stringLit = scan.Alt(quoted('"'), quoted('\''), quoted('`'))
	openers   = map[byte]byte{'(': ')', '[': ']', '{': '}'}
)

// quoted matches a string literal delimited by q. Backslash escapes are
// honoured except in backtick strings. An unterminated literal is a Fail.
func quoted(q byte) scan.Parser[string] {
	return func(c scan.Cursor) (scan.Cursor, string, error) {
		if c.IsEmpty() || c.Rest[0] != q {
			return c, "", scan.NextAt(c)
		}
		for i := 1; i < len(c.Rest); i++ {
			switch c.Rest[i] {
			case '\\':
				if q != '`' {
					i++
				}
			case q:
				next := c.Adv(i + 1)
				return next, next.Since(c), nil
			}
		}
		return c, "", scan.FailAt(c)
	}
}

// SplitPipe splits a piped expression such as "a => f(x) => g" on top-level
// arrows. Arrows inside string literals or brackets do not split. Blank input
// yields no segments; an empty segment, such as a trailing arrow, is an error.
// Error offsets are relative to expr.
func SplitPipe(expr string) ([]string, error) {
	if _, core, _ := trim.Trim(expr); core == "" {
		return nil, nil
	}

	var (
		segments []string
		stack    []byte
	)
	c := scan.New(expr)
	start := c
	for !c.IsEmpty() {
		if next, _, err := stringLit(c); err == nil {
			c = next
			continue
		} else if scan.IsFail(err) {
			return nil, errors.NewScanError(errors.CodeBadPipe, "unterminated string literal", int(c.Off))
		}

		b := c.Rest[0]
		switch {
		case openers[b] != 0:
			stack = append(stack, openers[b])
		case len(stack) > 0 && b == stack[len(stack)-1]:
			stack = stack[:len(stack)-1]
		case len(stack) == 0 && c.StartsWith(pipeArrow):
			seg, err := segment(start, c)
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
			c = c.Adv(len(pipeArrow))
			start = c
			continue
		}
		c = c.Adv(1)
	}

	if len(stack) > 0 {
		return nil, errors.NewScanError(errors.CodeBadPipe, "unbalanced brackets", int(c.Off))
	}
	seg, err := segment(start, c)
	if err != nil {
		return nil, err
	}
	return append(segments, seg), nil
}

func segment(start, end scan.Cursor) (string, error) {
	_, core, _ := trim.Trim(end.Since(start))
	if core == "" {
		return "", errors.NewScanError(errors.CodeBadPipe, "empty pipe segment", int(end.Off))
	}
	return core, nil
}
