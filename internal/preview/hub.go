// Package preview serves re-serialized documents over HTTP and pushes
// updates to connected browsers over WebSocket.
package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/templex/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Hub tracks WebSocket clients and fans broadcasts out to them. One
// goroutine owns the client set; everything else talks to it through
// channels.
type Hub struct {
	clients    map[*Client]struct{}
	count      int
	mu         sync.RWMutex
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	origins []string
	logger  logging.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// NewHub creates a hub and starts its loop. Origins lists the extra
// host:port values (or full origins) allowed to connect besides the
// request's own host.
func NewHub(logger logging.Logger, origins ...string) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client, 32),
		unregister: make(chan *Client, 32),
		origins:    origins,
		logger:     logger.WithComponent("preview"),
		ctx:        ctx,
		cancel:     cancel,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.count = 0
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.count = len(h.clients)
			h.mu.Unlock()
			h.logger.Debug(h.ctx, "client connected", "addr", c.addr, "clients", h.count)

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			var slow []*Client
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()
			for _, c := range slow {
				h.logger.Debug(h.ctx, "dropping slow client", "addr", c.addr)
				h.remove(c)
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.count = len(h.clients)
	h.logger.Debug(h.ctx, "client disconnected", "addr", c.addr, "clients", h.count)
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Broadcast queues msg for every client. A zero Timestamp is set to now.
// Messages are dropped when the hub is closed or its queue is full.
func (h *Hub) Broadcast(msg UpdateMessage) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error(h.ctx, err, "encoding broadcast message")
		return
	}

	select {
	case <-h.ctx.Done():
	case h.broadcast <- data:
	default:
		h.logger.Warn(h.ctx, nil, "broadcast queue full, dropping message", "type", msg.Type)
	}
}

// Close disconnects every client and stops the hub.
func (h *Hub) Close() {
	h.shutdownOnce.Do(h.cancel)
}

// ServeHTTP upgrades the request to a WebSocket and keeps the client
// registered until either side goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ctx.Err() != nil {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	if !h.checkOrigin(r) {
		h.logger.Warn(r.Context(), nil, "rejected websocket origin", "origin", r.Header.Get("Origin"))
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	// Origins were checked above.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "websocket upgrade failed", "addr", r.RemoteAddr)
		return
	}

	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), addr: r.RemoteAddr}
	select {
	case h.register <- c:
	case <-h.ctx.Done():
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	go c.writePump()
	c.readPump()
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.origins {
		if strings.EqualFold(allowed, u.Host) || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// readPump discards incoming messages. It returns, unregistering the
// client, when the connection fails or the hub stops.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
	}()

	for {
		_, msg, err := c.conn.Read(c.hub.ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure &&
				websocket.CloseStatus(err) != websocket.StatusGoingAway &&
				c.hub.ctx.Err() == nil {
				c.hub.logger.Debug(c.hub.ctx, "websocket read ended", "addr", c.addr, "error", err.Error())
			}
			return
		}
		c.hub.logger.Debug(c.hub.ctx, "ignoring client message", "addr", c.addr, "bytes", len(msg))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				c.hub.logger.Debug(c.hub.ctx, "websocket write failed", "addr", c.addr, "error", err.Error())
				_ = c.conn.CloseNow()
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				_ = c.conn.CloseNow()
				return
			}
		}
	}
}
