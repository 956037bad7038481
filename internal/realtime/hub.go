// Package realtime pushes dispatch board changes to connected admin UIs.
package realtime

import (
	"encoding/json"
	"time"

	"nomorebugs-admin/internal/logger"
	"nomorebugs-admin/internal/metrics"

	"github.com/gofiber/websocket/v2"
)

// Event is one message on the dispatch board socket.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
	At   time.Time   `json:"at"`
}

// Client is the part of a websocket connection the hub needs.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Hub struct {
	register   chan Client
	unregister chan Client
	broadcast  chan []byte
	clients    map[Client]bool
	stopped    chan struct{}
	log        logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		register:   make(chan Client),
		unregister: make(chan Client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[Client]bool),
		stopped:    make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub until done is closed.
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			for c := range h.clients {
				c.Close()
			}
			metrics.BoardClients.Set(0)
			close(h.stopped)
			return
		case c := <-h.register:
			h.clients[c] = true
			metrics.BoardClients.Set(float64(len(h.clients)))
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				c.Close()
				metrics.BoardClients.Set(float64(len(h.clients)))
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					delete(h.clients, c)
					c.Close()
					metrics.BoardClients.Set(float64(len(h.clients)))
				}
			}
		}
	}
}

// Register adds c to the hub. Once the hub has stopped, c is closed instead.
func (h *Hub) Register(c Client) {
	select {
	case h.register <- c:
	case <-h.stopped:
		c.Close()
	}
}

// Unregister removes and closes c. It returns immediately once the hub has
// stopped, since Run closes every client on the way out.
func (h *Hub) Unregister(c Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// Publish queues an event for every connected client. Events are dropped
// when the buffer is full.
func (h *Hub) Publish(eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data, At: time.Now().UTC()})
	if err != nil {
		h.log.Warn("realtime event not encoded", map[string]interface{}{"type": eventType, "error": err.Error()})
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn("realtime buffer full, event dropped", map[string]interface{}{"type": eventType})
	}
}

// Serve registers conn and blocks reading until it disconnects.
func (h *Hub) Serve(conn *websocket.Conn) {
	h.Register(conn)
	defer h.Unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
