package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr/internal"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBufferSize = 256
)

var (
	ErrUnknownConnection = errors.New("unknown connection")
	ErrSlowConsumer      = errors.New("send buffer full")
)

// EventHandler receives every inbound frame and the end of every
// connection.
type EventHandler interface {
	HandleEvent(connID string, raw []byte)
	Disconnect(connID, reason string)
}

type Options struct {
	// Empty allows every origin.
	AllowedOrigins []string
	// Inbound frames per second and burst, per connection. A zero rate
	// disables limiting.
	MessageRate  float64
	MessageBurst int
}

// =============================================================================
// HUB
// =============================================================================

// Hub owns the live websocket connections and delivers outbound events to
// them. Send never blocks, so it is safe to call with a room lock held.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	handler EventHandler

	upgrader websocket.Upgrader
	opts     Options
}

func NewHub(opts Options) *Hub {
	h := &Hub{
		clients: make(map[string]*Client),
		opts:    opts,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// SetHandler must be called before the hub serves any connection.
func (h *Hub) SetHandler(handler EventHandler) {
	h.handler = handler
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(h.opts.AllowedOrigins, "*") || slices.Contains(h.opts.AllowedOrigins, origin)
}

// ServeHTTP upgrades the request and runs the connection until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	c := h.newClient(conn)
	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	log.Info().Str("player", c.id).Str("remote", r.RemoteAddr).Int("connections", total).Msg("client connected")

	go c.writePump()
	go c.readPump()
}

// Send queues msg for connID.
func (h *Hub) Send(connID string, msg internal.Message[any]) error {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return ErrUnknownConnection
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrUnknownConnection
	case c.send <- data:
		return nil
	default:
		log.Warn().Str("player", connID).Str("event", msg.Type).Msg("send buffer full, dropping client")
		c.close()
		return ErrSlowConsumer
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client. Their read pumps report the
// disconnections to the handler.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
}

// =============================================================================
// CLIENT
// =============================================================================

type Client struct {
	id      string
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	done chan struct{}
	once sync.Once
}

func (h *Hub) newClient(conn *websocket.Conn) *Client {
	limit := rate.Inf
	if h.opts.MessageRate > 0 {
		limit = rate.Limit(h.opts.MessageRate)
	}
	return &Client{
		id:      uuid.NewString(),
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		limiter: rate.NewLimiter(limit, max(h.opts.MessageBurst, 1)),
		done:    make(chan struct{}),
	}
}

// close stops the write pump, which closes the socket on its way out.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// readPump handles frames one at a time, so a connection's events reach
// the handler in the order they were sent.
func (c *Client) readPump() {
	reason := "closed"
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("player", c.id).Interface("panic", r).Msg("read pump crashed")
			reason = "internal error"
		}
		c.hub.unregister(c)
		c.close()
		c.hub.handler.Disconnect(c.id, reason)
		log.Info().Str("player", c.id).Str("reason", reason).Msg("client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("player", c.id).Msg("unexpected close")
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Text != "" {
				reason = closeErr.Text
			}
			return
		}
		if !c.limiter.Allow() {
			log.Warn().Str("player", c.id).Msg("rate limit exceeded, dropping frame")
			continue
		}
		c.hub.handler.HandleEvent(c.id, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("player", c.id).Msg("write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("player", c.id).Msg("ping failed")
				return
			}
		}
	}
}
