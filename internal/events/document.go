package events

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/conneroisu/templex/internal/logging"
	"github.com/conneroisu/templex/internal/serializer"
)

var _ templ.Component = (*Document)(nil)

// Document is a recorded event stream that renders as a templ component.
// Each render runs a fresh serializer.
type Document struct {
	Events         []Event
	SkipWhitespace bool
	Logger         logging.Logger
}

// Render validates the events and serializes them to w.
func (d *Document) Render(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := Validate(d.Events); err != nil {
		return err
	}

	opts := []serializer.Option{serializer.WithSkipWhitespace(d.SkipWhitespace)}
	if d.Logger != nil {
		opts = append(opts, serializer.WithLogger(d.Logger))
	}
	return Replay(serializer.New(w, opts...), d.Events)
}
