package serializer

import (
	"bytes"
	"html"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/templex/internal/errors"
	"github.com/conneroisu/templex/internal/logging"
)

// failingWriter accepts n writes and fails afterwards.
type failingWriter struct {
	n   int
	buf bytes.Buffer
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n <= 0 {
		return 0, io.ErrClosedPipe
	}
	w.n--
	return w.buf.Write(p)
}

func render(t *testing.T, fn func(s *Serializer), opts ...Option) string {
	t.Helper()
	var buf bytes.Buffer
	s := New(&buf, opts...)
	fn(s)
	require.NoError(t, s.Finish())
	return buf.String()
}

func TestVoidElementHasNoClosingTag(t *testing.T) {
	out := render(t, func(s *Serializer) {
		require.NoError(t, s.StartElement(HTML("img"), nil))
		require.NoError(t, s.EndElement(HTML("img")))
	})
	assert.Equal(t, "<img>", out)
}

func TestElements(t *testing.T) {
	out := render(t, func(s *Serializer) {
		require.NoError(t, s.StartElement(HTML("div"), []Attr{A("class", "card")}))
		require.NoError(t, s.StartElement(HTML("p"), nil))
		require.NoError(t, s.WriteText("hi"))
		require.NoError(t, s.EndElement(HTML("p")))
		require.NoError(t, s.StartElement(HTML("br"), nil))
		require.NoError(t, s.EndElement(HTML("br")))
		require.NoError(t, s.EndElement(HTML("div")))
	})
	assert.Equal(t, `<div class="card"><p>hi</p><br></div>`, out)
}

func TestWhitespaceDeferral(t *testing.T) {
	out := render(t, func(s *Serializer) {
		require.NoError(t, s.WriteText("a \n"))
		require.NoError(t, s.WriteText("  b"))
	})
	assert.Equal(t, "a \n  b", out)
}

func TestPendingWhitespaceWrittenOnce(t *testing.T) {
	out := render(t, func(s *Serializer) {
		require.NoError(t, s.StartElement(HTML("p"), nil))
		require.NoError(t, s.WriteText("a "))
		require.NoError(t, s.EndElement(HTML("p")))
		require.NoError(t, s.StartElement(HTML("p"), nil))
		require.NoError(t, s.EndElement(HTML("p")))
	})
	assert.Equal(t, "<p>a </p><p></p>", out)
}

func TestCommentFlushesAndResetsSkipWhitespace(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)
	require.NoError(t, s.WriteText("a  "))
	s.SetSkipWhitespace(true)
	require.NoError(t, s.WriteComment("x"))

	assert.False(t, s.SkipWhitespace())
	assert.Equal(t, "a  <!--x-->", buf.String())
	require.NoError(t, s.Finish())
}

func TestSuppressedCommentResetsSkipWhitespace(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, WithSkipWhitespace(true))
	require.NoError(t, s.StartElement(HTML("img"), nil))
	require.NoError(t, s.WriteComment("x"))
	require.NoError(t, s.EndElement(HTML("img")))
	assert.False(t, s.SkipWhitespace())

	require.NoError(t, s.WriteText("  y"))
	require.NoError(t, s.Finish())
	assert.Equal(t, "<img>  y", buf.String())
}

func TestSkipWhitespace(t *testing.T) {
	out := render(t, func(s *Serializer) {
		require.NoError(t, s.WriteText("\n  a  "))
		require.NoError(t, s.StartElement(HTML("b"), nil))
		require.NoError(t, s.WriteText("  c"))
		require.NoError(t, s.EndElement(HTML("b")))
	}, WithSkipWhitespace(true))
	assert.Equal(t, "a  <b>c</b>", out)
}

func TestDoctype(t *testing.T) {
	out := render(t, func(s *Serializer) {
		require.NoError(t, s.WriteText("x\n"))
		require.NoError(t, s.WriteDoctype("html"))
	})
	assert.Equal(t, "x\n<!DOCTYPE html>", out)
}

func TestAttributes(t *testing.T) {
	out := render(t, func(s *Serializer) {
		require.NoError(t, s.StartElement(HTML("a"), []Attr{
			A("href", `/q?a=1&b="2"`),
			{Name: QualName{Space: NamespaceXLink, Local: "href"}, Value: "#top"},
			{Name: QualName{Space: NamespaceXMLNS, Local: "xmlns"}, Value: string(NamespaceSVG)},
			{Name: QualName{Space: NamespaceXMLNS, Local: "xlink"}, Value: string(NamespaceXLink)},
			{Name: QualName{Space: NamespaceXML, Local: "lang"}, Value: "en"},
			A("title", "<b>\u00a0"),
			A("hidden", ""),
		}))
		require.NoError(t, s.EndElement(HTML("a")))
	})

	assert.Equal(t, `<a href="/q?a=1&amp;b=&quot;2&quot;" xlink:href="#top"`+
		` xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink"`+
		` xml:lang="en" title="<b>&nbsp;" hidden></a>`, out)
}

func TestUnknownAttributeNamespace(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelWarn, Output: &logs})

	out := render(t, func(s *Serializer) {
		attr := Attr{Name: QualName{Space: "urn:example", Local: "x"}, Value: "1"}
		require.NoError(t, s.StartElement(HTML("i"), []Attr{attr}))
		require.NoError(t, s.EndElement(HTML("i")))
	}, WithLogger(logger))

	assert.Equal(t, `<i unknown_namespace:x="1"></i>`, out)
	assert.Contains(t, logs.String(), "attribute with unknown namespace")
	assert.Contains(t, logs.String(), "urn:example")
}

func TestEscaping(t *testing.T) {
	out := render(t, func(s *Serializer) {
		require.NoError(t, s.StartElement(HTML("p"), nil))
		require.NoError(t, s.WriteText(`a < b && "c" > d` + "\u00a0e"))
		require.NoError(t, s.EndElement(HTML("p")))
	})
	assert.Equal(t, `<p>a &lt; b &amp;&amp; "c" &gt; d&nbsp;e</p>`, out)
}

func TestRawTextElements(t *testing.T) {
	for _, name := range []string{"style", "script", "xmp", "iframe", "noembed", "noframes", "plaintext"} {
		t.Run(name, func(t *testing.T) {
			out := render(t, func(s *Serializer) {
				require.NoError(t, s.StartElement(HTML(name), nil))
				require.NoError(t, s.WriteText("if (a < b && c > d) {}"))
				require.NoError(t, s.EndElement(HTML(name)))
			})
			assert.Equal(t, "<"+name+">if (a < b && c > d) {}</"+name+">", out)
		})
	}
}

func TestForeignElementsKeepEscaping(t *testing.T) {
	svg := func(local string) QualName { return QualName{Space: NamespaceSVG, Local: local} }
	out := render(t, func(s *Serializer) {
		require.NoError(t, s.StartElement(svg("script"), nil))
		require.NoError(t, s.WriteText("a<b"))
		require.NoError(t, s.EndElement(svg("script")))
		require.NoError(t, s.StartElement(svg("image"), nil))
		require.NoError(t, s.EndElement(svg("image")))
	})
	assert.Equal(t, "<script>a&lt;b</script><image></image>", out)
}

func TestSuppressionPropagates(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	require.NoError(t, s.StartElement(HTML("input"), []Attr{A("type", "text")}))
	require.NoError(t, s.StartElement(HTML("span"), nil))
	require.NoError(t, s.StartElement(QualName{Space: NamespaceSVG, Local: "g"}, nil))
	require.NoError(t, s.WriteText("hidden <text>"))
	require.NoError(t, s.WriteComment("hidden"))
	assert.Equal(t, 3, s.Depth())
	require.NoError(t, s.EndElement(QualName{Space: NamespaceSVG, Local: "g"}))
	require.NoError(t, s.EndElement(HTML("span")))
	require.NoError(t, s.EndElement(HTML("input")))
	require.NoError(t, s.WriteText("after"))
	require.NoError(t, s.Finish())

	assert.Equal(t, `<input type="text">after`, buf.String())
}

func TestSinkFailure(t *testing.T) {
	w := &failingWriter{n: 1}
	s := New(w)

	require.NoError(t, s.WriteText("ok"))
	err := s.StartElement(HTML("p"), nil)
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
	assert.False(t, errors.IsRecoverable(err))
	assert.ErrorIs(t, err, io.ErrClosedPipe)

	var te *errors.TemplexError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, errors.CodeSinkWrite, te.Code)

	assert.Equal(t, err, s.WriteText("more"))
	assert.Equal(t, err, s.Finish())
	assert.Equal(t, "ok", w.buf.String())
}

func TestContractViolationsPanic(t *testing.T) {
	t.Run("end without start", func(t *testing.T) {
		s := New(io.Discard)
		assert.Panics(t, func() { _ = s.EndElement(HTML("p")) })
	})

	t.Run("finish with open elements", func(t *testing.T) {
		s := New(io.Discard)
		require.NoError(t, s.StartElement(HTML("p"), nil))
		assert.Panics(t, func() { _ = s.Finish() })
	})

	t.Run("event after finish", func(t *testing.T) {
		s := New(io.Discard)
		require.NoError(t, s.Finish())
		assert.Panics(t, func() { _ = s.WriteText("x") })
		assert.Panics(t, func() { _ = s.Finish() })
	})
}

func TestEscapeRoundTrip(t *testing.T) {
	text := "a & b < c > d \u00a0 \"e\""
	assert.Equal(t, text, html.UnescapeString(Escape(text)))
	assert.Equal(t, text, html.UnescapeString(EscapeAttr(text)))
	assert.NotContains(t, EscapeAttr(text), `"`)
	assert.False(t, strings.ContainsAny(Escape(text), "<>"))
}

func TestNames(t *testing.T) {
	assert.True(t, IsVoid(HTML("wbr")))
	assert.False(t, IsVoid(QualName{Space: NamespaceMathML, Local: "wbr"}))
	assert.True(t, IsRawText(HTML("script")))
	assert.False(t, IsRawText(HTML("div")))
}
