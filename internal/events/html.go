package events

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/templex/internal/errors"
	"github.com/conneroisu/templex/internal/serializer"
)

// The tokenizer lower-cases names; foreign content wants some of them back
// in camel case.
var svgTagNames = map[string]string{
	"clippath":         "clipPath",
	"foreignobject":    "foreignObject",
	"lineargradient":   "linearGradient",
	"radialgradient":   "radialGradient",
	"textpath":         "textPath",
	"feblend":          "feBlend",
	"fecolormatrix":    "feColorMatrix",
	"fegaussianblur":   "feGaussianBlur",
	"feoffset":         "feOffset",
	"animatemotion":    "animateMotion",
	"animatetransform": "animateTransform",
}

var svgAttrNames = map[string]string{
	"viewbox":             "viewBox",
	"preserveaspectratio": "preserveAspectRatio",
	"gradientunits":       "gradientUnits",
	"gradienttransform":   "gradientTransform",
	"patternunits":        "patternUnits",
	"stddeviation":        "stdDeviation",
	"textlength":          "textLength",
}

// Elements whose children are parsed as HTML again.
var integrationPoints = map[serializer.QualName]bool{
	{Space: serializer.NamespaceSVG, Local: "foreignObject"}: true,
	{Space: serializer.NamespaceSVG, Local: "desc"}:          true,
	{Space: serializer.NamespaceSVG, Local: "title"}:         true,
	{Space: serializer.NamespaceMathML, Local: "mi"}:         true,
	{Space: serializer.NamespaceMathML, Local: "mo"}:         true,
	{Space: serializer.NamespaceMathML, Local: "mn"}:         true,
	{Space: serializer.NamespaceMathML, Local: "ms"}:         true,
	{Space: serializer.NamespaceMathML, Local: "mtext"}:      true,
}

type htmlReader struct {
	z     *html.Tokenizer
	lower cases.Caser
	open  []serializer.QualName
	out   []Event
}

// FromHTML tokenizes an HTML document into a well-nested event stream
// ending in End. svg and math subtrees get their namespaces, void elements
// get synthesized end events, stray end tags are dropped and elements left
// open at EOF are closed.
func FromHTML(r io.Reader) ([]Event, error) {
	hr := &htmlReader{
		z:     html.NewTokenizer(r),
		lower: cases.Lower(language.Und),
	}
	for {
		tt := hr.z.Next()
		if tt == html.ErrorToken {
			if err := hr.z.Err(); err != io.EOF {
				return nil, errors.WrapIO(err, errors.CodeReadSource, "reading HTML")
			}
			break
		}
		hr.token(tt, hr.z.Token())
	}

	for len(hr.open) > 0 {
		hr.pop()
	}
	return append(hr.out, End()), nil
}

// namespace is the namespace new children of the current element get.
func (hr *htmlReader) namespace() serializer.Namespace {
	if len(hr.open) == 0 {
		return serializer.NamespaceHTML
	}
	top := hr.open[len(hr.open)-1]
	if integrationPoints[top] {
		return serializer.NamespaceHTML
	}
	return top.Space
}

func (hr *htmlReader) token(tt html.TokenType, tok html.Token) {
	switch tt {
	case html.TextToken:
		hr.out = append(hr.out, Text(tok.Data))
	case html.CommentToken:
		hr.out = append(hr.out, Comment(tok.Data))
	case html.DoctypeToken:
		hr.out = append(hr.out, Doctype(hr.doctype(tok.Data)))
	case html.StartTagToken, html.SelfClosingTagToken:
		hr.start(tok, tt == html.SelfClosingTagToken)
	case html.EndTagToken:
		hr.end(tok.Data)
	}
}

// doctype lower-cases the root name and keeps public and system ids as
// written.
func (hr *htmlReader) doctype(data string) string {
	name, rest, found := strings.Cut(strings.TrimSpace(data), " ")
	name = hr.lower.String(name)
	if !found {
		return name
	}
	return name + " " + rest
}

func (hr *htmlReader) start(tok html.Token, selfClosing bool) {
	space := hr.namespace()
	switch tok.Data {
	case "svg":
		space = serializer.NamespaceSVG
	case "math":
		space = serializer.NamespaceMathML
	}

	local := tok.Data
	if space == serializer.NamespaceSVG {
		if adjusted, ok := svgTagNames[local]; ok {
			local = adjusted
		}
	}
	name := serializer.QualName{Space: space, Local: local}

	var attrs []serializer.Attr
	for _, a := range tok.Attr {
		attrs = append(attrs, serializer.Attr{Name: attrName(space, a.Key), Value: a.Val})
	}
	hr.out = append(hr.out, StartElement(name, attrs...))

	// The tokenizer reads noscript content as raw text, but it is written
	// back as escaped markup.
	if name == serializer.HTML("noscript") {
		hr.z.NextIsNotRawText()
	}

	foreignSelfClosing := selfClosing && space != serializer.NamespaceHTML
	if serializer.IsVoid(name) || foreignSelfClosing {
		hr.out = append(hr.out, EndElement(name))
		return
	}
	hr.open = append(hr.open, name)
}

func attrName(space serializer.Namespace, key string) serializer.QualName {
	if space == serializer.NamespaceHTML {
		return serializer.QualName{Local: key}
	}
	if key == "xmlns" {
		return serializer.QualName{Space: serializer.NamespaceXMLNS, Local: key}
	}
	if prefix, local, ok := strings.Cut(key, ":"); ok {
		switch prefix {
		case "xlink":
			return serializer.QualName{Space: serializer.NamespaceXLink, Local: local}
		case "xml":
			return serializer.QualName{Space: serializer.NamespaceXML, Local: local}
		case "xmlns":
			return serializer.QualName{Space: serializer.NamespaceXMLNS, Local: local}
		}
	}
	if space == serializer.NamespaceSVG {
		if adjusted, ok := svgAttrNames[key]; ok {
			key = adjusted
		}
	}
	return serializer.QualName{Local: key}
}

// end closes the nearest open element with a matching name along with
// everything opened inside it.
func (hr *htmlReader) end(tag string) {
	for i := len(hr.open) - 1; i >= 0; i-- {
		if !strings.EqualFold(hr.open[i].Local, tag) {
			continue
		}
		for len(hr.open) > i {
			hr.pop()
		}
		return
	}
}

func (hr *htmlReader) pop() {
	top := hr.open[len(hr.open)-1]
	hr.open = hr.open[:len(hr.open)-1]
	hr.out = append(hr.out, EndElement(top))
}
