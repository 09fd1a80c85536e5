package lexer

import (
	"fmt"

	"github.com/conneroisu/templex/internal/source"
)

// Kind identifies a token.
type Kind int

const (
	Text Kind = iota
	Expr
	Safe
	Comment
	BlockOpen
	BlockClose
	Partial
	Raw
)

var kindNames = [...]string{
	Text:       "text",
	Expr:       "expr",
	Safe:       "safe",
	Comment:    "comment",
	BlockOpen:  "block_open",
	BlockClose: "block_close",
	Partial:    "partial",
	Raw:        "raw",
}

// String returns the string representation of the kind
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// MarshalText lets encoders print kinds by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown token kind %q", b)
}

// Span is a half-open byte range of the source.
type Span struct {
	Start uint32 `json:"start" yaml:"start" msgpack:"start"`
	End   uint32 `json:"end" yaml:"end" msgpack:"end"`
}

// Token is one lexeme. Every string field is a sub-slice of the source.
type Token struct {
	Kind Kind `json:"kind" yaml:"kind" msgpack:"kind"`
	Span Span `json:"span" yaml:"span" msgpack:"span"`

	// Value is the text for Text tokens, the body for Raw and Comment, and
	// the trimmed inner source for everything else.
	Value string `json:"value" yaml:"value" msgpack:"value"`

	// Name and Args are set for BlockOpen, BlockClose and Partial.
	Name string `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Args string `json:"args,omitempty" yaml:"args,omitempty" msgpack:"args,omitempty"`

	// Lead, Core and Trail split a Text token's Value.
	Lead  string `json:"-" yaml:"-" msgpack:"-"`
	Core  string `json:"-" yaml:"-" msgpack:"-"`
	Trail string `json:"-" yaml:"-" msgpack:"-"`

	// TrimLeft and TrimRight record a "~" whitespace-control marker.
	TrimLeft  bool `json:"trim_left,omitempty" yaml:"trim_left,omitempty" msgpack:"trim_left,omitempty"`
	TrimRight bool `json:"trim_right,omitempty" yaml:"trim_right,omitempty" msgpack:"trim_right,omitempty"`

	Pos source.Pos `json:"pos" yaml:"pos" msgpack:"pos"`
}

// String implements fmt.Stringer.
func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Pos, t.Kind, t.Value)
}
