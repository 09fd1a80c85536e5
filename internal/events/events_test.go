package events

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/templex/internal/errors"
	"github.com/conneroisu/templex/internal/serializer"
)

var (
	p   = serializer.HTML("p")
	div = serializer.HTML("div")
	img = serializer.HTML("img")
)

func TestReplay(t *testing.T) {
	evs := []Event{
		Doctype("html"),
		StartElement(div, serializer.A("id", "x")),
		Text("\n  "),
		StartElement(p),
		Text("a & b\n"),
		EndElement(p),
		Comment(" c "),
		StartElement(img, serializer.A("src", "a.png")),
		EndElement(img),
		Text("\n"),
		EndElement(div),
		End(),
	}
	require.NoError(t, Validate(evs))

	var buf bytes.Buffer
	require.NoError(t, Replay(serializer.New(&buf), evs))
	assert.Equal(t, "<!DOCTYPE html><div id=\"x\">\n  <p>a &amp; b\n</p><!-- c --><img src=\"a.png\">\n</div>", buf.String())
}

func TestReplayWithoutEnd(t *testing.T) {
	var buf bytes.Buffer
	s := serializer.New(&buf)
	require.NoError(t, Replay(s, []Event{Text("x  ")}))
	assert.Equal(t, "x  ", buf.String())
	assert.Panics(t, func() { _ = s.WriteText("y") })
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name string
		evs  []Event
	}{
		{"stray end", []Event{EndElement(p)}},
		{"mismatched end", []Event{StartElement(div), EndElement(p)}},
		{"left open", []Event{StartElement(div)}},
		{"end with open elements", []Event{StartElement(div), End()}},
		{"event after end", []Event{End(), Text("x")}},
		{"unknown kind", []Event{{Kind: Kind(42)}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.evs)
			require.Error(t, err)

			var te *errors.TemplexError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, errors.CodeMalformedInput, te.Code)
			assert.Contains(t, te.Context, "event")
		})
	}

	assert.NoError(t, Validate(nil))
	assert.NoError(t, Validate([]Event{Text("x"), End()}))
}

func TestDocumentRender(t *testing.T) {
	doc := &Document{
		Events:         []Event{StartElement(p), Text("\n  hi"), EndElement(p)},
		SkipWhitespace: true,
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Render(context.Background(), &buf))
	assert.Equal(t, "<p>hi</p>", buf.String())

	buf.Reset()
	require.NoError(t, doc.Render(context.Background(), &buf))
	assert.Equal(t, "<p>hi</p>", buf.String(), "every render starts fresh")
}

func TestDocumentRenderRejectsMalformedEvents(t *testing.T) {
	doc := &Document{Events: []Event{EndElement(p)}}
	err := doc.Render(context.Background(), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestDocumentRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := (&Document{}).Render(ctx, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEventJSON(t *testing.T) {
	b, err := json.Marshal(StartElement(p, serializer.A("class", "x")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"start_element","name":{"space":"http://www.w3.org/1999/xhtml","local":"p"},"attrs":[{"name":{"local":"class"},"value":"x"}]}`, string(b))

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"comment","data":"hi"}`), &ev))
	assert.Equal(t, Comment("hi"), ev)
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"bogus"}`), &ev))
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "<p> (0 attrs)", StartElement(p).String())
	assert.Equal(t, "</p>", EndElement(p).String())
	assert.Equal(t, `text "x"`, Text("x").String())
	assert.Equal(t, "end", End().String())
	assert.True(t, strings.HasPrefix(Kind(9).String(), "unknown"))
}
