package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/auth"
)

// Event is a message pushed to connected dashboard clients
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan Event
	hub  *Hub
}

// Hub manages dashboard WebSocket connections and fan-out
type Hub struct {
	clients    map[*client]bool
	broadcast  chan Event
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex

	authService *auth.Service
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewHub creates the hub and starts its dispatch loop
func NewHub(authService *auth.Service) *Hub {
	hub := &Hub{
		clients:     make(map[*client]bool),
		broadcast:   make(chan Event, 64),
		register:    make(chan *client),
		unregister:  make(chan *client),
		authService: authService,
	}
	go hub.run()
	return hub
}

// Handle upgrades an authenticated HTTP request into a WebSocket connection.
// The token comes via query parameter because browsers cannot set headers
// on WebSocket upgrades.
func (h *Hub) Handle(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization token")
	}
	if _, err := h.authService.ValidateToken(token); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	cl := &client{
		conn: conn,
		send: make(chan Event, 256),
		hub:  h,
	}
	h.register <- cl

	go cl.writePump()
	go cl.readPump()

	return nil
}

// Broadcast pushes an event to every connected client. Safe to call with
// no clients connected.
func (h *Hub) Broadcast(event string, data interface{}) {
	msg := Event{
		Type:      event,
		Data:      data,
		Timestamp: time.Now(),
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Warn().
			Str("event", event).
			Int("clients", h.ConnectedClients()).
			Msg("WebSocket broadcast queue full, dropping event")
	}
}

// ConnectedClients returns the number of active connections
func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) run() {
	for {
		select {
		case cl := <-h.register:
			welcome := Event{
				Type:      "connection",
				Data:      map[string]string{"status": "connected"},
				Timestamp: time.Now(),
			}
			h.mu.Lock()
			h.clients[cl] = true
			select {
			case cl.send <- welcome:
			default:
				close(cl.send)
				delete(h.clients, cl)
			}
			h.mu.Unlock()

		case cl := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[cl]; ok {
				delete(h.clients, cl)
				close(cl.send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			// Full write lock: a client that cannot keep up gets dropped
			// here, which mutates the map.
			h.mu.Lock()
			for cl := range h.clients {
				select {
				case cl.send <- msg:
				default:
					close(cl.send)
					delete(h.clients, cl)
				}
			}
			h.mu.Unlock()
		}
	}
}

// readPump drains client messages, answering pings. Read deadline is 30s
// since the write side pings every 20s.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Msg("WebSocket read error")
			}
			break
		}

		var msg Event
		if err := json.Unmarshal(message, &msg); err == nil && msg.Type == "ping" {
			pong := Event{
				Type:      "pong",
				Data:      map[string]string{"status": "ok"},
				Timestamp: time.Now(),
			}
			select {
			case c.send <- pong:
			default:
				return
			}
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(20 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
