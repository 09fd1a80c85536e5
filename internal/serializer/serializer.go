// Package serializer writes markup from a stream of structural events.
//
// A Serializer keeps a stack of open elements to decide escaping and
// suppression, and holds back the trailing whitespace of the latest text
// node until the next event arrives. Bytes go to the sink as soon as they
// are known; nothing else is buffered.
//
// Event sequences must nest: every StartElement is closed by an EndElement
// before its parent closes, and Finish is called once at depth zero. Breaking
// this contract panics. Sink write failures are returned as I/O errors and
// leave the Serializer unusable.
package serializer

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/net/html/atom"

	"github.com/conneroisu/templex/internal/errors"
	"github.com/conneroisu/templex/internal/logging"
	"github.com/conneroisu/templex/internal/trim"
)

type frame struct {
	name                atom.Atom
	suppressChildren    bool
	processedFirstChild bool
}

// Serializer streams escaped markup to a writer. It is not safe for
// concurrent use and serves a single render.
type Serializer struct {
	w      io.Writer
	logger logging.Logger

	stack   []frame
	skipWS  bool
	pending string // trailing whitespace of the last text node

	finished bool
	err      error
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithLogger sets the logger used for namespace warnings.
func WithLogger(l logging.Logger) Option {
	return func(s *Serializer) { s.logger = l }
}

// WithSkipWhitespace starts the serializer in skip-whitespace mode.
func WithSkipWhitespace(skip bool) Option {
	return func(s *Serializer) { s.skipWS = skip }
}

// New creates a serializer writing to w.
func New(w io.Writer, opts ...Option) *Serializer {
	s := &Serializer{
		w:      w,
		logger: logging.NewNop(),
		stack:  []frame{{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("serializer")
	return s
}

// SetSkipWhitespace toggles skip-whitespace mode. While on, leading
// whitespace of text nodes is dropped. Comments switch it off.
func (s *Serializer) SetSkipWhitespace(skip bool) {
	s.skipWS = skip
}

// SkipWhitespace reports whether skip-whitespace mode is on.
func (s *Serializer) SkipWhitespace() bool {
	return s.skipWS
}

// Depth returns the number of open elements.
func (s *Serializer) Depth() int {
	return len(s.stack) - 1
}

func (s *Serializer) parent() *frame {
	return &s.stack[len(s.stack)-1]
}

// check guards every event. It panics after Finish and replays a previous
// sink error.
func (s *Serializer) check(event string) error {
	if s.finished {
		panic(fmt.Sprintf("serializer: %s after Finish", event))
	}
	return s.err
}

func (s *Serializer) write(str string) error {
	if s.err != nil {
		return s.err
	}
	if _, err := io.WriteString(s.w, str); err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *Serializer) escaped(str string, attrMode bool) error {
	if s.err != nil {
		return s.err
	}
	if err := writeEscaped(s.w, str, attrMode); err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *Serializer) fail(err error) error {
	s.err = errors.WrapIO(err, errors.CodeSinkWrite, "writing markup")
	return s.err
}

// flush writes and clears the pending whitespace.
func (s *Serializer) flush() error {
	if s.pending == "" {
		return nil
	}
	ws := s.pending
	s.pending = ""
	return s.write(ws)
}

func (s *Serializer) tagName(name QualName) string {
	switch name.Space {
	case NamespaceHTML, NamespaceSVG, NamespaceMathML:
	default:
		s.logger.Warn(context.Background(), nil, "element with unexpected namespace",
			"namespace", string(name.Space), "element", name.Local)
	}
	return name.Local
}

// StartElement opens an element. Inside a suppressed element it only
// records the nesting.
func (s *Serializer) StartElement(name QualName, attrs []Attr) error {
	if err := s.check("StartElement"); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		return err
	}

	id := identity(name)
	if s.parent().suppressChildren {
		s.stack = append(s.stack, frame{name: id, suppressChildren: true})
		return nil
	}

	if err := s.write("<" + s.tagName(name)); err != nil {
		return err
	}
	for _, attr := range attrs {
		if err := s.writeAttr(attr); err != nil {
			return err
		}
	}
	if err := s.write(">"); err != nil {
		return err
	}

	s.parent().processedFirstChild = true
	s.stack = append(s.stack, frame{name: id, suppressChildren: voidElements[id]})
	return nil
}

func (s *Serializer) writeAttr(attr Attr) error {
	prefix, known := attrPrefix(attr.Name)
	if !known {
		s.logger.Warn(context.Background(), nil, "attribute with unknown namespace",
			"namespace", string(attr.Name.Space), "attribute", attr.Name.Local)
	}
	if err := s.write(" " + prefix + attr.Name.Local); err != nil {
		return err
	}
	if attr.Value == "" {
		return nil
	}
	if err := s.write(`="`); err != nil {
		return err
	}
	if err := s.escaped(attr.Value, true); err != nil {
		return err
	}
	return s.write(`"`)
}

// EndElement closes the innermost open element. Void and suppressed
// elements produce no closing tag. It panics when no element is open.
func (s *Serializer) EndElement(name QualName) error {
	if err := s.check("EndElement"); err != nil {
		return err
	}
	if len(s.stack) == 1 {
		panic(fmt.Sprintf("serializer: EndElement(%q) with no open element", name.Local))
	}
	if err := s.flush(); err != nil {
		return err
	}

	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	if top.suppressChildren {
		return nil
	}
	return s.write("</" + s.tagName(name) + ">")
}

// WriteText writes a text node. Its trailing whitespace is held until the
// next event; the previously held whitespace is written first.
func (s *Serializer) WriteText(text string) error {
	if err := s.check("WriteText"); err != nil {
		return err
	}
	parent := s.parent()
	if parent.suppressChildren {
		return nil
	}

	lead, core, trail := trim.Trim(text)
	if err := s.flush(); err != nil {
		return err
	}
	s.pending = trail

	out := lead + core
	if s.skipWS {
		out = core
	}
	if rawTextElements[parent.name] {
		return s.write(out)
	}
	return s.escaped(out, false)
}

// WriteComment writes <!--text--> verbatim and turns skip-whitespace mode
// off, also inside a suppressed element.
func (s *Serializer) WriteComment(text string) error {
	if err := s.check("WriteComment"); err != nil {
		return err
	}
	s.skipWS = false
	if s.parent().suppressChildren {
		return nil
	}
	if err := s.flush(); err != nil {
		return err
	}
	return s.write("<!--" + text + "-->")
}

// WriteDoctype writes <!DOCTYPE name>.
func (s *Serializer) WriteDoctype(name string) error {
	if err := s.check("WriteDoctype"); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		return err
	}
	return s.write("<!DOCTYPE " + name + ">")
}

// Finish writes any held whitespace and ends the render. It panics if
// elements are still open, and any later event panics.
func (s *Serializer) Finish() error {
	if err := s.check("Finish"); err != nil {
		s.finished = true
		return err
	}
	if depth := s.Depth(); depth > 0 {
		panic(fmt.Sprintf("serializer: Finish with %d open element(s)", depth))
	}
	s.finished = true
	return s.flush()
}
