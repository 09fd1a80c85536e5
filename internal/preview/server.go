package preview

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/a-h/templ"

	"github.com/conneroisu/templex/internal/config"
	"github.com/conneroisu/templex/internal/events"
	"github.com/conneroisu/templex/internal/logging"
	"github.com/conneroisu/templex/internal/serializer"
)

const reloadJS = `(function(){` +
	`var ws=new WebSocket((location.protocol==="https:"?"wss://":"ws://")+location.host+"/ws");` +
	`ws.onmessage=function(e){var m=JSON.parse(e.data);` +
	`if(m.type==="update"){location.reload()}else if(m.type==="error"){console.error(m.target+": "+m.content)}}` +
	`})();`

const reloadScript = "<script>" + reloadJS + "</script>"

// Server keeps the latest serialization of every published target and
// serves it with a live-reload script appended.
type Server struct {
	cfg    *config.Config
	hub    *Hub
	logger logging.Logger

	mu      sync.RWMutex
	pages   map[string]string
	current string
}

// NewServer creates a preview server for cfg. The server's own address and
// its localhost aliases are always allowed WebSocket origins.
func NewServer(cfg *config.Config, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	origins := append([]string{cfg.Address()}, cfg.Server.AllowedOrigins...)
	for _, host := range []string{"localhost", "127.0.0.1"} {
		origins = append(origins, net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port)))
	}

	return &Server{
		cfg:    cfg,
		hub:    NewHub(logger, origins...),
		logger: logger.WithComponent("preview"),
		pages:  make(map[string]string),
	}
}

// Hub returns the server's WebSocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Handler serves the WebSocket endpoint on /ws, the list of targets on
// /targets and the current (or ?target=) page on /.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.hub)
	mux.HandleFunc("/targets", s.handleTargets)
	mux.HandleFunc("/", s.handlePage)
	return Chain(mux, Recover(s.logger), Logging(s.logger))
}

// Publish serializes doc, stores it under target and tells every browser.
// A document that fails to serialize is broadcast as an error instead.
func (s *Server) Publish(ctx context.Context, target string, doc *events.Document) error {
	var buf bytes.Buffer
	if err := doc.Render(ctx, &buf); err != nil {
		s.PublishError(target, err)
		return err
	}

	s.mu.Lock()
	s.pages[target] = buf.String()
	s.current = target
	s.mu.Unlock()

	s.hub.Broadcast(UpdateMessage{Type: MessageUpdate, Target: target, Content: buf.String()})
	s.logger.Debug(ctx, "published", "target", target, "bytes", buf.Len())
	return nil
}

// PublishError reports a failure for target to every browser.
func (s *Server) PublishError(target string, err error) {
	s.hub.Broadcast(UpdateMessage{Type: MessageError, Target: target, Content: err.Error()})
}

// Targets returns the published targets in order.
func (s *Server) Targets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	targets := make([]string, 0, len(s.pages))
	for t := range s.pages {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	items := make([]events.Event, 0)
	for _, t := range s.Targets() {
		items = append(items,
			events.StartElement(serializer.HTML("li")),
			events.StartElement(serializer.HTML("a"), serializer.A("href", "/?target="+t)),
			events.Text(t),
			events.EndElement(serializer.HTML("a")),
			events.EndElement(serializer.HTML("li")),
		)
	}
	body := append([]events.Event{events.StartElement(serializer.HTML("ul"))}, items...)
	body = append(body, events.EndElement(serializer.HTML("ul")))

	templ.Handler(page("targets", body)).ServeHTTP(w, r)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.mu.RLock()
	target := r.URL.Query().Get("target")
	if target == "" {
		target = s.current
	}
	content, ok := s.pages[target]
	s.mu.RUnlock()

	if target == "" {
		waiting := []events.Event{
			events.StartElement(serializer.HTML("p")),
			events.Text("Waiting for template changes..."),
			events.EndElement(serializer.HTML("p")),
		}
		templ.Handler(page("templex preview", waiting)).ServeHTTP(w, r)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	withReload := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, content); err != nil {
			return err
		}
		_, err := io.WriteString(w, reloadScript)
		return err
	})
	templ.Handler(withReload).ServeHTTP(w, r)
}

// page wraps body in a minimal document carrying the reload script.
func page(title string, body []events.Event) templ.Component {
	evs := []events.Event{
		events.Doctype("html"),
		events.StartElement(serializer.HTML("html")),
		events.StartElement(serializer.HTML("head")),
		events.StartElement(serializer.HTML("title")),
		events.Text(title),
		events.EndElement(serializer.HTML("title")),
		events.EndElement(serializer.HTML("head")),
		events.StartElement(serializer.HTML("body")),
	}
	evs = append(evs, body...)
	evs = append(evs,
		events.StartElement(serializer.HTML("script")),
		events.Text(reloadJS),
		events.EndElement(serializer.HTML("script")),
		events.EndElement(serializer.HTML("body")),
		events.EndElement(serializer.HTML("html")),
		events.End(),
	)
	return &events.Document{Events: evs}
}

// ListenAndServe serves the preview until ctx is done, then shuts the
// HTTP server and the hub down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "preview server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.hub.Close()
		return err
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
