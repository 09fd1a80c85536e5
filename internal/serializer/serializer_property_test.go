//go:build property

package serializer

import (
	"bytes"
	"html"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var voidNames = []string{
	"area", "base", "basefont", "bgsound", "br", "col", "embed", "frame", "hr",
	"img", "input", "keygen", "link", "meta", "param", "source", "track", "wbr",
}

var textPieces = []string{"", "a", " ", "b c", "\n  ", "d\t", "  e  ", "\u200e", "f\n"}

// TestSerializerProperties checks suppression, escaping and whitespace
// preservation over generated inputs.
func TestSerializerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("void elements never close and hide their children", prop.ForAll(
		func(idx int, attrName, attrValue, text string) bool {
			name := HTML(voidNames[idx])
			attrs := []Attr{A("data-"+attrName, attrValue)}

			var want bytes.Buffer
			ref := New(&want)
			_ = ref.StartElement(name, attrs)
			_ = ref.EndElement(name)
			_ = ref.Finish()

			var got bytes.Buffer
			s := New(&got)
			_ = s.StartElement(name, attrs)
			_ = s.StartElement(HTML("span"), attrs)
			_ = s.WriteText(text)
			_ = s.WriteComment(text)
			_ = s.EndElement(HTML("span"))
			_ = s.WriteText(text)
			_ = s.EndElement(name)
			_ = s.Finish()

			return got.String() == want.String() &&
				!strings.Contains(got.String(), "</"+name.Local)
		},
		gen.IntRange(0, len(voidNames)-1),
		gen.AlphaString(),
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("escaping round-trips through an HTML unescaper", prop.ForAll(
		func(text string) bool {
			return html.UnescapeString(Escape(text)) == text &&
				html.UnescapeString(EscapeAttr(text)) == text
		},
		gen.AnyString(),
	))

	properties.Property("attribute escaping leaves no raw quotes", prop.ForAll(
		func(text string) bool {
			return !strings.Contains(EscapeAttr(text), `"`)
		},
		gen.AnyString(),
	))

	properties.Property("whitespace is neither dropped nor duplicated", prop.ForAll(
		func(picks []int) bool {
			var buf, want bytes.Buffer
			s := New(&buf)
			_ = s.StartElement(HTML("p"), nil)
			for _, i := range picks {
				piece := textPieces[i]
				want.WriteString(piece)
				_ = s.WriteText(piece)
			}
			_ = s.EndElement(HTML("p"))
			_ = s.Finish()
			return buf.String() == "<p>"+want.String()+"</p>"
		},
		gen.SliceOf(gen.IntRange(0, len(textPieces)-1)),
	))

	properties.TestingRun(t)
}
