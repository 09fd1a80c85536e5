// Package events models the structural event stream consumed by the
// serializer and provides ways to produce and replay it.
package events

import (
	"fmt"

	"github.com/conneroisu/templex/internal/errors"
	"github.com/conneroisu/templex/internal/serializer"
)

// Kind identifies an event.
type Kind uint8

const (
	KindStartElement Kind = iota
	KindEndElement
	KindText
	KindComment
	KindDoctype
	KindEnd
)

var kindNames = [...]string{
	KindStartElement: "start_element",
	KindEndElement:   "end_element",
	KindText:         "text",
	KindComment:      "comment",
	KindDoctype:      "doctype",
	KindEnd:          "end",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i) // #nosec G115 -- bounded by kindNames
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", b)
}

// Event is one structural event. Name and Attrs are set for element
// events, Data for text, comment and doctype events.
type Event struct {
	Kind  Kind                `json:"kind" yaml:"kind" msgpack:"kind"`
	Name  serializer.QualName `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Attrs []serializer.Attr   `json:"attrs,omitempty" yaml:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Data  string              `json:"data,omitempty" yaml:"data,omitempty" msgpack:"data,omitempty"`
}

func StartElement(name serializer.QualName, attrs ...serializer.Attr) Event {
	return Event{Kind: KindStartElement, Name: name, Attrs: attrs}
}

func EndElement(name serializer.QualName) Event {
	return Event{Kind: KindEndElement, Name: name}
}

func Text(s string) Event    { return Event{Kind: KindText, Data: s} }
func Comment(s string) Event { return Event{Kind: KindComment, Data: s} }
func Doctype(s string) Event { return Event{Kind: KindDoctype, Data: s} }
func End() Event             { return Event{Kind: KindEnd} }

// String renders the event for debugging output.
func (e Event) String() string {
	switch e.Kind {
	case KindStartElement:
		return fmt.Sprintf("<%s> (%d attrs)", e.Name.Local, len(e.Attrs))
	case KindEndElement:
		return fmt.Sprintf("</%s>", e.Name.Local)
	case KindEnd:
		return "end"
	}
	return fmt.Sprintf("%s %q", e.Kind, e.Data)
}

// Validate checks that evs nest correctly and that nothing follows End.
// The serializer panics on such sequences; Validate reports them as errors
// for input that does not come from trusted code.
func Validate(evs []Event) error {
	var open []serializer.QualName
	for i, ev := range evs {
		switch ev.Kind {
		case KindStartElement:
			open = append(open, ev.Name)
		case KindEndElement:
			if len(open) == 0 {
				return malformed(i, "end element %q has no matching start", ev.Name.Local)
			}
			if top := open[len(open)-1]; top != ev.Name {
				return malformed(i, "end element %q closes %q", ev.Name.Local, top.Local)
			}
			open = open[:len(open)-1]
		case KindText, KindComment, KindDoctype:
		case KindEnd:
			if len(open) > 0 {
				return malformed(i, "end of stream with %d open element(s)", len(open))
			}
			if i != len(evs)-1 {
				return malformed(i+1, "event after end of stream")
			}
		default:
			return malformed(i, "unknown event kind %d", ev.Kind)
		}
	}
	if len(open) > 0 {
		return malformed(len(evs), "%d element(s) left open", len(open))
	}
	return nil
}

func malformed(index int, format string, args ...interface{}) error {
	return errors.NewValidationError(errors.CodeMalformedInput, fmt.Sprintf(format, args...)).
		WithContext("event", index)
}

// Replay feeds evs to s in order and finishes s. A trailing End event is
// optional. The first sink error stops the replay.
func Replay(s *serializer.Serializer, evs []Event) error {
	for _, ev := range evs {
		var err error
		switch ev.Kind {
		case KindStartElement:
			err = s.StartElement(ev.Name, ev.Attrs)
		case KindEndElement:
			err = s.EndElement(ev.Name)
		case KindText:
			err = s.WriteText(ev.Data)
		case KindComment:
			err = s.WriteComment(ev.Data)
		case KindDoctype:
			err = s.WriteDoctype(ev.Data)
		case KindEnd:
			return s.Finish()
		}
		if err != nil {
			return err
		}
	}
	return s.Finish()
}
