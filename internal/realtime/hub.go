package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"voicedesk/internal/calllog"
)

// envelope is the frame pushed to dashboard sessions.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans realtime events out to a user's open dashboard sessions. A user
// may hold several connections (tabs); each gets every event for that user.
//
// Delivery is best-effort: a session with a full send buffer is dropped
// rather than allowed to stall the webhook path.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
	log     *slog.Logger
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

const sendBuffer = 16

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		log:     log,
	}
}

// NotifyCallUpdate implements the reconciler's notifier: it pushes a
// callUpdate frame to every session of the owning user.
func (h *Hub) NotifyCallUpdate(userID string, upd calllog.CallUpdate) {
	h.broadcast(userID, envelope{Type: "callUpdate", Data: upd})
}

func (h *Hub) broadcast(userID string, ev envelope) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("realtime: marshal event", "err", err)
		return
	}

	h.mu.RLock()
	var stalled []*client
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		h.log.Warn("realtime: dropping stalled session", "user_id", userID)
		h.remove(c)
	}
}

// SessionCount reports open sessions for a user.
func (h *Hub) SessionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if ok {
		if _, present := set[c]; present {
			delete(set, c)
			close(c.send)
			if len(set) == 0 {
				delete(h.clients, c.userID)
			}
		}
	}
	h.mu.Unlock()
	c.conn.Close()
}
