package websocket

import (
	"errors"
	"net/http"
	"time"

	"github.com/aescanero/debatehub/internal/application/progress"
	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Subscriber attaches push subscribers to sessions
type Subscriber interface {
	Subscribe(sessionID string) (*progress.Subscription, error)
}

// Handler handles WebSocket connections
type Handler struct {
	sessions Subscriber
	logger   *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(sessions Subscriber, logger *zap.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		logger:   logger,
	}
}

// HandleSessionStream streams the progress events of one session. The
// latest snapshot is sent first; the connection is closed normally after the
// terminal event.
func (h *Handler) HandleSessionStream(c *gin.Context) {
	sessionID := c.Param("id")

	// Subscribe before upgrading so unknown sessions get a plain 404
	sub, err := h.sessions.Subscribe(sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": gin.H{"code": "NOT_FOUND", "message": "Session not found"},
			})
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	defer sub.Close()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	h.logger.Info("WebSocket connection established",
		zap.String("session_id", sessionID),
		zap.String("client", c.ClientIP()))

	// The read loop only processes control frames and detects disconnects
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			h.logger.Debug("WebSocket client disconnected",
				zap.String("session_id", sessionID))
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case event, ok := <-sub.C():
			if !ok {
				h.closeNormally(conn)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Error("failed to write message",
					zap.String("session_id", sessionID),
					zap.Error(err))
				return
			}
			if event.Terminal() {
				h.closeNormally(conn)
				return
			}
		}
	}
}

func (h *Handler) closeNormally(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session finished")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
