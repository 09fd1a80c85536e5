// Package lexer turns template source into a position-tracked token stream.
//
// The grammar is handlebars-like:
//
//	{{ expr }}          Expr
//	{{{ expr }}}        Safe (not escaped by the renderer)
//	{{! text !}}        Comment, also {{!-- text --}}
//	{{# name args }}    BlockOpen
//	{{/ name }}         BlockClose
//	{{> path args }}    Partial
//	{{R}} body {{/R}}   Raw, body kept verbatim
//
// A "~" right after the opener or right before the closer strips the
// whitespace of the neighbouring text. Delimiters are configurable.
//
// Every production is built from the scan combinators. Productions report
// scan.Next when they do not apply and scan.Fail once an opener is matched
// but the rest of the tag is malformed; the latter aborts lexing with a
// located scan error.
package lexer

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/conneroisu/templex/internal/errors"
	"github.com/conneroisu/templex/internal/logging"
	"github.com/conneroisu/templex/internal/scan"
	"github.com/conneroisu/templex/internal/source"
	"github.com/conneroisu/templex/internal/trim"
)

const trimMarker = "~"

// Syntax holds the tag delimiters.
type Syntax struct {
	Open  string `mapstructure:"open" yaml:"open"`
	Close string `mapstructure:"close" yaml:"close"`
}

// DefaultSyntax returns the {{ }} delimiters.
func DefaultSyntax() Syntax {
	return Syntax{Open: "{{", Close: "}}"}
}

// Validate rejects delimiters the lexer cannot work with.
func (s Syntax) Validate() error {
	switch {
	case s.Open == "" || s.Close == "":
		return fmt.Errorf("delimiters must not be empty")
	case s.Open == s.Close:
		return fmt.Errorf("open and close delimiters must differ")
	case strings.ContainsFunc(s.Open+s.Close, trim.IsWS):
		return fmt.Errorf("delimiters must not contain whitespace")
	}
	return nil
}

// Lexer tokenizes template files. It holds no per-file state and is safe
// for concurrent use.
type Lexer struct {
	syntax Syntax
	logger logging.Logger

	rawOpen  string
	rawClose string
	tag      scan.Parser[Token]
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithSyntax sets the delimiters.
func WithSyntax(s Syntax) Option {
	return func(lx *Lexer) { lx.syntax = s }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l logging.Logger) Option {
	return func(lx *Lexer) {
		if l != nil {
			lx.logger = l
		}
	}
}

// New creates a lexer. It panics on invalid syntax; validate user supplied
// delimiters with Syntax.Validate first.
func New(opts ...Option) *Lexer {
	lx := &Lexer{
		syntax: DefaultSyntax(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(lx)
	}
	if err := lx.syntax.Validate(); err != nil {
		panic(err)
	}
	lx.logger = lx.logger.WithComponent("lexer")

	open, close := lx.syntax.Open, lx.syntax.Close
	lx.rawOpen = open + "R" + close
	lx.rawClose = open + "/R" + close
	lx.tag = scan.Alt(
		lx.raw(),
		lx.comment(open+"!--", "--"+close),
		lx.comment(open+"!", "!"+close),
		lx.mustache(Safe, open+"{", "}"+close),
		lx.mustache(Expr, open, close),
	)
	return lx
}

// Syntax returns the delimiters in use.
func (lx *Lexer) Syntax() Syntax {
	return lx.syntax
}

// LexString tokenizes src as an anonymous file.
func (lx *Lexer) LexString(src string) ([]Token, error) {
	return lx.Lex(source.NewFile("", src))
}

// Lex tokenizes f. On a fatal scan error the tokens read so far are returned
// together with a *errors.TemplexError carrying the location.
func (lx *Lexer) Lex(f *source.File) ([]Token, error) {
	var tokens []Token
	c := scan.New(f.Content)
	for !c.IsEmpty() {
		next, tok, err := lx.tag(c)
		switch {
		case err == nil:
		case scan.IsNext(err):
			next, tok = lx.text(c)
		default:
			return finish(f, tokens), lx.failure(f, c, err)
		}
		tokens = append(tokens, tok)
		c = next
	}

	tokens = finish(f, tokens)
	lx.logger.Debug(context.Background(), "lexed template", "path", f.Path, "tokens", len(tokens))
	return tokens, nil
}

// text consumes up to the next opener. It always consumes at least one byte.
func (lx *Lexer) text(c scan.Cursor) (scan.Cursor, Token) {
	n := c.Len()
	if len(c.Rest) > 1 {
		if i := strings.Index(c.Rest[1:], lx.syntax.Open); i >= 0 {
			n = i + 1
		}
	}
	next := c.Adv(n)
	tok := Token{Kind: Text, Span: span(c, next)}
	setText(&tok, c.Rest[:n])
	return next, tok
}

func (lx *Lexer) raw() scan.Parser[Token] {
	body := scan.Terminated(scan.MapFail(scan.TakeUntil(lx.rawClose)), scan.Tag(lx.rawClose))
	return func(c scan.Cursor) (scan.Cursor, Token, error) {
		next, v, err := scan.Preceded(scan.Tag(lx.rawOpen), body)(c)
		if err != nil {
			return c, Token{}, err
		}
		return next, Token{Kind: Raw, Span: span(c, next), Value: v}, nil
	}
}

func (lx *Lexer) comment(open, close string) scan.Parser[Token] {
	p := scan.Delimited(scan.Tag(open), scan.MapFail(scan.TakeUntil(close)), scan.Tag(close))
	return func(c scan.Cursor) (scan.Cursor, Token, error) {
		next, v, err := p(c)
		if err != nil {
			return c, Token{}, err
		}
		return next, Token{Kind: Comment, Span: span(c, next), Value: v}, nil
	}
}

func (lx *Lexer) mustache(kind Kind, open, close string) scan.Parser[Token] {
	opener := scan.Pair(scan.Tag(open), scan.Opt(scan.Tag(trimMarker)))
	inner := scan.MapFail(scan.TakeUntil(close))
	return func(c scan.Cursor) (scan.Cursor, Token, error) {
		afterOpen, o, err := opener(c)
		if err != nil {
			return c, Token{}, err
		}
		beforeClose, body, err := inner(afterOpen)
		if err != nil {
			return c, Token{}, err
		}
		next := beforeClose.Adv(len(close))

		tok := Token{Kind: kind, Span: span(c, next), TrimLeft: o.Second.Ok}
		if strings.HasSuffix(body, trimMarker) {
			tok.TrimRight = true
			body = body[:len(body)-len(trimMarker)]
		}
		_, tok.Value, _ = trim.Trim(body)

		if kind == Expr {
			if err := classify(scan.Cursor{Rest: body, Off: afterOpen.Off}, &tok); err != nil {
				return c, Token{}, err
			}
		}
		return next, tok, nil
	}
}

type header struct {
	kind Kind
	name string
}

var headers = scan.Alt(
	headerParser("#", BlockOpen, isNameChar),
	headerParser("/", BlockClose, isNameChar),
	headerParser(">", Partial, func(r rune) bool { return !trim.IsWS(r) }),
)

func headerParser(sigil string, kind Kind, nameChar func(rune) bool) scan.Parser[header] {
	name := scan.Preceded(scan.Ws, scan.MapFail(scan.TakeWhile1(nameChar)))
	return scan.Map(scan.Preceded(scan.Tag(sigil), name), func(n string) header {
		return header{kind: kind, name: n}
	})
}

func isNameChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' || r == ':'
}

// classify refines an Expr into a block or partial tag when its body starts
// with a sigil.
func classify(c scan.Cursor, tok *Token) error {
	next, h, err := headers(scan.SkipWs(c))
	if scan.IsNext(err) {
		return nil
	}
	if err != nil {
		return err
	}
	tok.Kind = h.kind
	tok.Name = h.name
	_, tok.Args, _ = trim.Trim(next.Rest)
	return nil
}

func (lx *Lexer) failure(f *source.File, c scan.Cursor, err error) error {
	off, _ := scan.Offset(err)
	code, msg := errors.CodeMalformedInput, "expected a name"

	open, close := lx.syntax.Open, lx.syntax.Close
	unterminated := func(what, closer string) {
		if !strings.Contains(c.Rest, closer) {
			code, msg, off = errors.CodeUnterminated, "unterminated "+what, c.Off
		}
	}
	switch {
	case c.StartsWith(lx.rawOpen):
		unterminated("raw block", lx.rawClose)
	case c.StartsWith(open + "!--"):
		unterminated("comment", "--"+close)
	case c.StartsWith(open + "!"):
		unterminated("comment", "!"+close)
	case c.StartsWith(open + "{"):
		unterminated("safe expression", "}"+close)
	default:
		unterminated("expression", close)
	}

	return f.Locate(errors.NewScanError(code, msg, int(off)))
}

// finish applies whitespace control and fills in positions.
func finish(f *source.File, tokens []Token) []Token {
	for i, tok := range tokens {
		if tok.TrimLeft && i > 0 && tokens[i-1].Kind == Text {
			prev := &tokens[i-1]
			value := trim.Right(prev.Value)
			prev.Span.End -= uint32(len(prev.Value) - len(value)) // #nosec G115 -- sub-slice
			setText(prev, value)
		}
		if tok.TrimRight && i+1 < len(tokens) && tokens[i+1].Kind == Text {
			next := &tokens[i+1]
			value := trim.Left(next.Value)
			next.Span.Start += uint32(len(next.Value) - len(value)) // #nosec G115 -- sub-slice
			setText(next, value)
		}
	}

	out := tokens[:0]
	for _, tok := range tokens {
		if tok.Kind == Text && tok.Value == "" {
			continue
		}
		tok.Pos = f.Position(int(tok.Span.Start))
		out = append(out, tok)
	}
	return out
}

func setText(tok *Token, value string) {
	tok.Value = value
	tok.Lead, tok.Core, tok.Trail = trim.Trim(value)
}

func span(from, to scan.Cursor) Span {
	return Span{Start: from.Off, End: to.Off}
}
