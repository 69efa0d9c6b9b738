package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/andrescamacho/citysim-go/internal/application/logging"
	"github.com/andrescamacho/citysim-go/internal/application/simulation"
)

// Message is the JSON envelope of every frame sent to observers
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// MessageTypeTick carries a full simulation.TickReport
const MessageTypeTick = "tick"

// client is one connected observer
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans tick reports out to websocket observers.
//
// Run owns the client set; everything else talks to it through channels.
// An observer whose buffer is full is dropped rather than slowing the
// simulation down. Hub is a simulation.ReportSink.
type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}

	bufferSize   int
	writeTimeout time.Duration
	connected    atomic.Int64
	upgrader     websocket.Upgrader
	logger       logging.TickLogger
}

// NewHub creates a hub; call Run in its own goroutine
func NewHub(bufferSize int, writeTimeout time.Duration, logger logging.TickLogger) *Hub {
	if bufferSize <= 0 {
		bufferSize = 32
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.LoggerFromContext(context.Background())
	}
	return &Hub{
		clients:      make(map[*client]struct{}),
		broadcast:    make(chan []byte, bufferSize),
		register:     make(chan *client),
		unregister:   make(chan *client),
		done:         make(chan struct{}),
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, after
// disconnecting every observer.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.connected.Store(int64(len(h.clients)))
			h.logger.Log(logging.LevelInfo, "observer connected", map[string]interface{}{
				"remote":    c.conn.RemoteAddr().String(),
				"observers": len(h.clients),
			})

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}

		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					h.logger.Log(logging.LevelWarn, "observer too slow, dropping", map[string]interface{}{
						"remote": c.conn.RemoteAddr().String(),
					})
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.connected.Store(int64(len(h.clients)))
}

// Clients returns the number of connected observers
func (h *Hub) Clients() int {
	return int(h.connected.Load())
}

// Publish broadcasts a report to every observer
func (h *Hub) Publish(ctx context.Context, report *simulation.TickReport) error {
	frame, err := json.Marshal(Message{Type: MessageTypeTick, Payload: report})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- frame:
		return nil
	case <-h.done:
		return fmt.Errorf("stream hub stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeHTTP upgrades the request and attaches the observer
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Log(logging.LevelWarn, "websocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, h.bufferSize)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump discards inbound frames and notices disconnects
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second))
}
