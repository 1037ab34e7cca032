package operator

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Hub is a live feed of verdict-transition and batch-anchored events: a
// register/unregister/broadcast goroutine fanning messages out to every
// connected client. It never touches the monitor or anchor's owned state
// directly — callers push already-serialized events onto Broadcast.
type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// StreamEvent is the JSON shape pushed to every connected operator console.
type StreamEvent struct {
	Type string      `json:"type"` // "verdict_transition" | "batch_anchored"
	Data interface{} `json:"data"`
}

// NewHub constructs a hub; it does not start the run loop. Callers should
// call Run in a goroutine once, at process start.
func NewHub() *Hub {
	return &Hub{
		upgrader:   websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 256),
	}
}

// Run is the hub's single goroutine: the only place clients is mutated.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Publish enqueues ev for broadcast to every connected client.
func (h *Hub) Publish(ev StreamEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("operator: failed to marshal stream event", "error", err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		slog.Warn("operator: broadcast channel full, dropping stream event")
	}
}

// ServeWS upgrades the request to a websocket and registers the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("operator: websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}
	h.register <- c

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
