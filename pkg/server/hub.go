package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/yui/pkg/middleware"
	"github.com/vango-dev/yui/pkg/protocol"
)

// FrameHandler answers a frame sent by a client. A nil reply sends nothing.
type FrameHandler func(ctx context.Context, f *protocol.Frame) *protocol.Frame

// Hub fans frames out to the connected WebSocket clients.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	seq      atomic.Uint64
	upgrader websocket.Upgrader
	config   *ServerConfig
	handle   FrameHandler
	metrics  *middleware.Metrics
	logger   *slog.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// NewHub creates a hub. handle answers client frames and may be nil.
func NewHub(config *ServerConfig, handle FrameHandler) *Hub {
	config = config.withDefaults()
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
		handle: handle,
		logger: slog.Default().With("component", "hub"),
	}
}

// SetLogger sets the logger.
func (h *Hub) SetLogger(logger *slog.Logger) {
	h.logger = logger
}

// SetMetrics enables client and frame metrics.
func (h *Hub) SetMetrics(m *middleware.Metrics) {
	h.metrics = m
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast implements Broadcaster. Frames get increasing sequence
// numbers. A client whose queue is full is dropped.
func (h *Hub) Broadcast(f *protocol.Frame) {
	out := *f
	out.Seq = h.seq.Add(1)
	data, err := protocol.EncodeFrame(&out)
	if err != nil {
		h.logger.Error("frame encode failed", "type", out.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for c := range h.clients {
		select {
		case c.send <- data:
			sent++
		default:
			h.logger.Warn("dropping slow client", "remote", c.conn.RemoteAddr().String())
			delete(h.clients, c)
			c.close()
		}
	}
	if h.metrics != nil {
		h.metrics.RecordFrames(sent)
	}
}

// ServeHTTP upgrades the request and serves the client until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, h.config.SendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.RecordClientConnect()
	}
	h.logger.Debug("client connected", "remote", conn.RemoteAddr().String())

	go h.writeLoop(c)
	h.readLoop(r.Context(), c)

	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.RecordClientDisconnect()
	}
	h.logger.Debug("client disconnected", "remote", conn.RemoteAddr().String())
}

// readLoop decodes client frames and queues the replies. It returns when
// the connection fails.
func (h *Hub) readLoop(ctx context.Context, c *client) {
	c.conn.SetReadLimit(protocol.MaxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(h.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.config.PongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.logger.Error("read error", "error", err)
				if h.metrics != nil {
					h.metrics.RecordWebSocketError(err)
				}
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(h.config.PongWait))

		var reply *protocol.Frame
		frame, err := protocol.DecodeFrame(msg)
		switch {
		case err != nil:
			h.logger.Warn("frame decode error", "error", err)
			if h.metrics != nil {
				h.metrics.RecordWebSocketError(err)
			}
			reply = protocol.NewErrorFrame(0, protocol.ErrInvalidFrame, err.Error())
		case h.handle != nil:
			reply = h.handle(ctx, frame)
		}
		if reply != nil && !h.reply(c, reply) {
			return
		}
	}
}

func (h *Hub) reply(c *client, f *protocol.Frame) bool {
	data, err := protocol.EncodeFrame(f)
	if err != nil {
		h.logger.Error("frame encode failed", "type", f.Type, "error", err)
		return true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		delete(h.clients, c)
		c.close()
		return false
	}
}

// writeLoop writes queued frames and pings until the send queue closes.
func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Warn("write error", "error", err)
				if h.metrics != nil {
					h.metrics.RecordWebSocketError(err)
				}
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}
