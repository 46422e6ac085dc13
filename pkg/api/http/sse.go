package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleEvents streams progress events as server-sent events. The latest
// snapshot is replayed first and the stream ends after the terminal event.
func (s *Server) handleEvents(c *gin.Context) {
	sessionID := c.Param("id")

	sub, err := s.manager.Subscribe(sessionID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("event stream closed by client",
				zap.String("session_id", sessionID))
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(c.Writer, ": keepalive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		case event, ok := <-sub.C():
			if !ok {
				return
			}
			c.SSEvent("progress", event)
			c.Writer.Flush()
			if event.Terminal() {
				return
			}
		}
	}
}
