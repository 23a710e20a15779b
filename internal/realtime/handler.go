package realtime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"voicedesk/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard authenticates with a bearer token, not a cookie, so
		// cross-origin upgrades carry no ambient credentials.
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Handler upgrades authenticated dashboard requests into hub sessions.
type Handler struct {
	hub    *Hub
	tokens *auth.Manager
}

func NewHandler(hub *Hub, tokens *auth.Manager) *Handler {
	return &Handler{hub: hub, tokens: tokens}
}

// Serve handles GET /v1/ws. Browsers cannot set headers on WebSocket dials,
// so the token is accepted from the Authorization header or a token query
// parameter.
func (h *Handler) Serve(c *gin.Context) {
	raw := auth.BearerToken(c)
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "unauthorized", "message": "missing bearer token"}})
		return
	}
	claims, err := h.tokens.Verify(raw, auth.TokenTypeAccess, time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "unauthorized", "message": "invalid token"}})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}

	cl := &client{userID: claims.UserID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.hub.add(cl)

	go h.writePump(cl)
	go h.readPump(cl)
}

func (h *Handler) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.hub.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.hub.remove(c)
				return
			}
		}
	}
}

// readPump discards inbound frames; the socket is push-only. Reading is still
// required to process control frames and notice the peer going away.
func (h *Handler) readPump(c *client) {
	defer h.hub.remove(c)

	c.conn.SetReadLimit(1024)
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
