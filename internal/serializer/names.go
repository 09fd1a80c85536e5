package serializer

import "golang.org/x/net/html/atom"

// Namespace is a markup namespace URI.
type Namespace string

const (
	NamespaceNone   Namespace = ""
	NamespaceHTML   Namespace = "http://www.w3.org/1999/xhtml"
	NamespaceSVG    Namespace = "http://www.w3.org/2000/svg"
	NamespaceMathML Namespace = "http://www.w3.org/1998/Math/MathML"
	NamespaceXML    Namespace = "http://www.w3.org/XML/1998/namespace"
	NamespaceXMLNS  Namespace = "http://www.w3.org/2000/xmlns/"
	NamespaceXLink  Namespace = "http://www.w3.org/1999/xlink"
)

// QualName is a namespaced element or attribute name.
type QualName struct {
	Space Namespace `json:"space,omitempty" yaml:"space,omitempty" msgpack:"space,omitempty"`
	Local string    `json:"local" yaml:"local" msgpack:"local"`
}

// HTML returns a name in the HTML namespace.
func HTML(local string) QualName {
	return QualName{Space: NamespaceHTML, Local: local}
}

// Attr is an attribute with its raw, unescaped value.
type Attr struct {
	Name  QualName `json:"name" yaml:"name" msgpack:"name"`
	Value string   `json:"value" yaml:"value" msgpack:"value"`
}

// A reports an attribute without a namespace.
func A(local, value string) Attr {
	return Attr{Name: QualName{Local: local}, Value: value}
}

var voidElements = map[atom.Atom]bool{
	atom.Area:     true,
	atom.Base:     true,
	atom.Basefont: true,
	atom.Bgsound:  true,
	atom.Br:       true,
	atom.Col:      true,
	atom.Embed:    true,
	atom.Frame:    true,
	atom.Hr:       true,
	atom.Img:      true,
	atom.Input:    true,
	atom.Keygen:   true,
	atom.Link:     true,
	atom.Meta:     true,
	atom.Param:    true,
	atom.Source:   true,
	atom.Track:    true,
	atom.Wbr:      true,
}

// Text inside these elements is written verbatim.
var rawTextElements = map[atom.Atom]bool{
	atom.Style:     true,
	atom.Script:    true,
	atom.Xmp:       true,
	atom.Iframe:    true,
	atom.Noembed:   true,
	atom.Noframes:  true,
	atom.Plaintext: true,
}

// identity resolves the tag identity of an element. Only HTML namespace
// elements have one.
func identity(name QualName) atom.Atom {
	if name.Space != NamespaceHTML {
		return 0
	}
	return atom.Lookup([]byte(name.Local))
}

// IsVoid reports whether name can never have children or a closing tag.
func IsVoid(name QualName) bool {
	return voidElements[identity(name)]
}

// IsRawText reports whether text inside name is written without escaping.
func IsRawText(name QualName) bool {
	return rawTextElements[identity(name)]
}

func attrPrefix(name QualName) (prefix string, known bool) {
	switch name.Space {
	case NamespaceNone:
		return "", true
	case NamespaceXML:
		return "xml:", true
	case NamespaceXMLNS:
		if name.Local == "xmlns" {
			return "", true
		}
		return "xmlns:", true
	case NamespaceXLink:
		return "xlink:", true
	}
	return "unknown_namespace:", false
}
