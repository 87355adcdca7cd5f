package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rickgao/iss-tracker/internal/logging"
	"github.com/rickgao/iss-tracker/internal/model"
)

// LatestFunc returns the newest retained position, if any.
type LatestFunc func() (model.Position, bool)

// Config holds hub settings.
type Config struct {
	BufferSize   int           // Per-subscriber queue length (default: 16)
	WriteTimeout time.Duration // Deadline for a single frame write (default: 5s)
	PingInterval time.Duration // Keepalive ping period (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:   16,
		WriteTimeout: 5 * time.Second,
		PingInterval: 30 * time.Second,
	}
}

// subscriber is one connected WebSocket client.
type subscriber struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte

	// seed is the LatestFunc position queued on connect. The first
	// broadcast equal to it is skipped.
	seed *model.Position
}

// Hub fans positions out to WebSocket subscribers.
type Hub struct {
	cfg      Config
	latest   LatestFunc
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	last        model.Position // newest broadcast position
	hasLast     bool
	closed      bool
}

// NewHub creates a Hub. latest may be nil.
func NewHub(cfg Config, latest LatestFunc, logger *slog.Logger) *Hub {
	defaults := DefaultConfig()
	if cfg.BufferSize < 1 {
		cfg.BufferSize = defaults.BufferSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaults.PingInterval
	}
	return &Hub{
		cfg:    cfg,
		latest: latest,
		logger: logging.Default(logger).With("component", "stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  512,
			WriteBufferSize: 4096,
			// The feed is public read-only data.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subscribers: make(map[*subscriber]struct{}),
	}
}

// HandlePosition offers p to every subscriber without blocking.
func (h *Hub) HandlePosition(p model.Position) {
	data, err := json.Marshal(p)
	if err != nil {
		h.logger.Error("failed to encode position", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last, h.hasLast = p, true
	for sub := range h.subscribers {
		if sub.seed != nil {
			dup := *sub.seed == p
			sub.seed = nil
			if dup {
				continue
			}
		}
		select {
		case sub.send <- data:
		default:
			h.logger.Warn("subscriber too slow, disconnecting", "subscriber", sub.id)
			h.removeLocked(sub)
		}
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close disconnects all subscribers and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for sub := range h.subscribers {
		h.removeLocked(sub)
	}
}

// ServeHTTP upgrades the request and streams positions until the client
// goes away or the hub is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		h.logger.Debug("websocket upgrade failed", "err", err)
		return
	}

	var (
		seed     model.Position
		haveSeed bool
	)
	if h.latest != nil {
		seed, haveSeed = h.latest()
	}

	sub := &subscriber{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, h.cfg.BufferSize),
	}

	if !h.subscribe(sub, seed, haveSeed) {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second),
		)
		conn.Close()
		return
	}

	h.logger.Debug("subscriber connected", "subscriber", sub.id, "remote", r.RemoteAddr)

	go h.writeLoop(sub)
	h.readLoop(sub)

	h.remove(sub)
	conn.Close()
	h.logger.Debug("subscriber disconnected", "subscriber", sub.id)
}

// subscribe registers sub and queues its first frame under one lock, so no
// broadcast can land between the two. A position the hub already broadcast
// takes precedence over seed, which may be older by the time the lock is held.
func (h *Hub) subscribe(sub *subscriber, seed model.Position, haveSeed bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}

	switch {
	case h.hasLast:
		h.enqueueLocked(sub, h.last)
	case haveSeed:
		// Not broadcast yet; it may still be on its way through HandlePosition.
		if h.enqueueLocked(sub, seed) {
			sub.seed = &seed
		}
	}

	h.subscribers[sub] = struct{}{}
	return true
}

// enqueueLocked must be called with h.mu held, before sub is shared.
func (h *Hub) enqueueLocked(sub *subscriber, p model.Position) bool {
	data, err := json.Marshal(p)
	if err != nil {
		h.logger.Error("failed to encode position", "err", err)
		return false
	}
	sub.send <- data
	return true
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

// removeLocked must be called with h.mu held. Closing send tells the
// write loop to say goodbye and exit.
func (h *Hub) removeLocked(sub *subscriber) {
	if _, ok := h.subscribers[sub]; !ok {
		return
	}
	delete(h.subscribers, sub)
	close(sub.send)
}

// readLoop discards client frames; it returns when the connection fails.
func (h *Hub) readLoop(sub *subscriber) {
	pongWait := 2 * h.cfg.PingInterval
	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop is the only writer of sub.conn.
func (h *Hub) writeLoop(sub *subscriber) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-sub.send:
			if !ok {
				sub.conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second),
				)
				sub.conn.Close()
				return
			}
			sub.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("write to subscriber failed", "subscriber", sub.id, "err", err)
				sub.conn.Close()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := sub.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				sub.conn.Close()
				return
			}
		}
	}
}
