package apiserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

const (
	writeWait = 2 * time.Second

	// sendBuffer is how many events a client may fall behind before it is
	// dropped.
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The admin UI may be served from a different origin during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client is one websocket subscriber. Only its write loop writes data
// frames to ws.
type client struct {
	ws   *websocket.Conn
	send chan []byte
}

// Hub fans change events out to connected websocket clients. Broadcast never
// waits on the network: each client has a buffered queue drained by its own
// write loop, and a client whose queue is full is dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*client
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*client),
		logger:  logger,
	}
}

// Add registers a client and queues a welcome event as its first message.
func (h *Hub) Add(ws *websocket.Conn) {
	c := &client{ws: ws, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	welcome := v1alpha1.ChangeEvent{Type: v1alpha1.ChangeWelcome, Count: len(h.clients) + 1, At: time.Now()}
	b, err := json.Marshal(welcome)
	if err != nil {
		h.mu.Unlock()
		_ = ws.Close()
		return
	}
	c.send <- b
	h.clients[ws] = c
	h.mu.Unlock()

	go h.writeLoop(c)
}

// Remove drops and closes a client.
func (h *Hub) Remove(ws *websocket.Conn) {
	h.mu.Lock()
	h.removeLocked(ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// Broadcast queues v for every client, dropping clients that have fallen
// too far behind.
func (h *Hub) Broadcast(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		h.logger.Warn("encoding change event failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ws, c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.logger.Debug("dropping slow websocket client")
			h.removeLocked(ws)
			_ = ws.Close()
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.clients {
		h.removeLocked(ws)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = ws.Close()
	}
}

// removeLocked unregisters ws and ends its write loop. Must be called with
// h.mu held.
func (h *Hub) removeLocked(ws *websocket.Conn) {
	if c, ok := h.clients[ws]; ok {
		delete(h.clients, ws)
		close(c.send)
	}
}

func (h *Hub) writeLoop(c *client) {
	for b := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
			h.logger.Debug("dropping websocket client", zap.Error(err))
			h.Remove(c.ws)
			return
		}
	}
}

// handleWatch upgrades the connection and keeps it registered until the
// client goes away. Incoming messages are ignored.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	s.hub.Add(ws)
	s.logger.Debug("websocket client connected", zap.String("remote", r.RemoteAddr))

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.Remove(ws)
	s.logger.Debug("websocket client disconnected", zap.String("remote", r.RemoteAddr))
}
