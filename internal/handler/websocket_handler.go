package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/Baaaki/car-marketplace/internal/broker"
	"github.com/Baaaki/car-marketplace/internal/middleware"
	"github.com/Baaaki/car-marketplace/internal/session"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second // Time allowed to write a message to the peer
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // 54 seconds
	maxMessageSize = 4 * 1024            // clients only send control frames
)

type WSResponse struct {
	Type  string        `json:"type"` // "event" or "session_expired"
	Event *broker.Event `json:"event,omitempty"`
	Error string        `json:"error,omitempty"`
}

// WebSocketHandler pushes message events to logged-in users.
type WebSocketHandler struct {
	notifier broker.Notifier
	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]*Client
	mu       sync.RWMutex
}

type Client struct {
	conn        *websocket.Conn
	userID      uint64
	username    string
	expiresAt   time.Time
	connectedAt time.Time
}

// NewWebSocketHandler accepts upgrades from allowedOrigin, or from any origin when it is "*".
func NewWebSocketHandler(notifier broker.Notifier, allowedOrigin string) *WebSocketHandler {
	return &WebSocketHandler{
		notifier: notifier,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
		clients: make(map[*websocket.Conn]*Client),
	}
}

// HandleWebSocket upgrades the request and streams the caller's message events
// until the peer disconnects or the session expires.
// GET /api/messages/ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}

	// Subscribe before upgrading so a broker failure is still a plain HTTP error.
	sub, err := h.notifier.Subscribe(c.Request.Context(), sess.User.ID)
	if err != nil {
		logger.Log.Error("Failed to subscribe to message events",
			zap.Uint64("user_id", sess.User.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "notifications unavailable"})
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}

	client := h.addClient(conn, sess)
	defer h.removeClient(conn)

	done := make(chan struct{})
	go h.writePump(client, sub, done)

	h.readPump(client)
	close(done)
}

// ConnectedClients reports the number of open sockets.
func (h *WebSocketHandler) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *WebSocketHandler) addClient(conn *websocket.Conn, sess *session.Session) *Client {
	client := &Client{
		conn:        conn,
		userID:      sess.User.ID,
		username:    sess.User.Username,
		expiresAt:   sess.ExpiresAt,
		connectedAt: time.Now(),
	}

	h.mu.Lock()
	h.clients[conn] = client
	total := len(h.clients)
	h.mu.Unlock()

	logger.Log.Info("Client connected",
		zap.Uint64("user_id", client.userID),
		zap.String("username", client.username),
		zap.Int("total", total),
	)
	return client
}

// readPump discards client frames; it exists to process pongs and notice disconnects.
func (h *WebSocketHandler) readPump(client *Client) {
	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("WebSocket read error",
					zap.Uint64("user_id", client.userID),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// writePump is the only writer on client.conn.
func (h *WebSocketHandler) writePump(client *Client, sub *broker.Subscription, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	sessionTimer := time.NewTimer(time.Until(client.expiresAt))
	defer sessionTimer.Stop()

	events := sub.Events()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				h.closeClientGracefully(client, websocket.CloseGoingAway, "notifications closed")
				return
			}
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteJSON(WSResponse{Type: "event", Event: &event}); err != nil {
				logger.Log.Warn("Failed to push message event",
					zap.Uint64("user_id", client.userID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Log.Debug("Ping failed",
					zap.Uint64("user_id", client.userID),
					zap.Error(err),
				)
				return
			}

		case <-sessionTimer.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteJSON(WSResponse{Type: "session_expired", Error: "session expired"}); err != nil {
				logger.Log.Debug("Failed to send session_expired", zap.Error(err))
			}
			h.closeClientGracefully(client, websocket.CloseNormalClosure, "session expired")
			return

		case <-done:
			return
		}
	}
}

func (h *WebSocketHandler) closeClientGracefully(client *Client, code int, reason string) {
	client.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := client.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
	); err != nil {
		logger.Log.Debug("Failed to send close frame", zap.Error(err))
	}

	logger.Log.Info("Closed connection",
		zap.Uint64("user_id", client.userID),
		zap.String("reason", reason),
	)
}

func (h *WebSocketHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, exists := h.clients[conn]
	if !exists {
		return
	}
	delete(h.clients, conn)
	conn.Close()

	logger.Log.Info("Client disconnected",
		zap.Uint64("user_id", client.userID),
		zap.Duration("session_duration", time.Since(client.connectedAt).Round(time.Second)),
		zap.Int("remaining", len(h.clients)),
	)
}
