package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard origins are not restricted; the API carries no secrets
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is the wire frame pushed to connected dashboards
type Event struct {
	Type string                `json:"type"`
	Scan *contracts.ScanResult `json:"scan,omitempty"`
}

// Hub broadcasts each fresh scan result to all connected WebSocket
// clients. It implements contracts.ScanNotifier.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	log     *logger.Logger
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log.WithField("component", "ws_hub"),
	}
}

// NotifyScan pushes one scan result to every connected client.
// Clients that cannot keep up are dropped rather than blocking the
// scan pipeline. Sends happen under the read lock: a send channel is
// only closed by remove, which holds the write lock, so a client that
// is still in the map here cannot have a closed channel.
func (h *Hub) NotifyScan(result *contracts.ScanResult) {
	event := &Event{Type: "scan", Scan: result}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- event:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("Dropping slow WebSocket client")
		h.remove(c)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection and starts the client pumps
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan *Event, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.WithField("clients", h.ClientCount()).Debug("WebSocket client connected")

	go c.writePump(h)
	go c.readPump(h)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

type client struct {
	conn *websocket.Conn
	send chan *Event
}

// readPump drains inbound frames so pong handling works; the protocol
// is push-only and client messages are discarded
func (c *client) readPump(h *Hub) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
