package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aescanero/debatehub/internal/application/orchestrator"
	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionCreateResponse represents a session creation response
type SessionCreateResponse struct {
	SessionID string `json:"session_id"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// writeError maps domain errors to status codes
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", "Session not found")
	case errors.Is(err, domain.ErrInvalidRequest):
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, domain.ErrResultNotReady):
		abortWithError(c, http.StatusConflict, "NOT_COMPLETED", "Session not yet completed")
	case errors.Is(err, orchestrator.ErrShuttingDown):
		abortWithError(c, http.StatusServiceUnavailable, "UNAVAILABLE", err.Error())
	default:
		s.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{
		"orchestrator":    "ok",
		"active_sessions": s.manager.ActiveCount(),
	}

	if s.health != nil {
		pool := s.health.GetStatus()
		checks["workers"] = pool
		if !pool.Healthy {
			status = http.StatusServiceUnavailable
		}
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":    state,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

// handleListProviders handles listing selectable providers
func (s *Server) handleListProviders(c *gin.Context) {
	names := []string{}
	if s.providers != nil {
		names = s.providers.Names()
	}
	c.JSON(http.StatusOK, gin.H{"providers": names})
}

// handleCreateDebate handles debate session creation
func (s *Server) handleCreateDebate(c *gin.Context) {
	var req domain.DebateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("invalid request", zap.Error(err))
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	sessionID, err := s.manager.CreateDebate(req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SessionCreateResponse{SessionID: sessionID})
}

// handleCreateBusiness handles business idea session creation
func (s *Server) handleCreateBusiness(c *gin.Context) {
	var req domain.BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("invalid request", zap.Error(err))
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	sessionID, err := s.manager.CreateBusiness(req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SessionCreateResponse{SessionID: sessionID})
}

// handleListSessions handles listing sessions held in memory
func (s *Server) handleListSessions(c *gin.Context) {
	type summary struct {
		SessionID string              `json:"session_id"`
		Kind      domain.WorkflowKind `json:"kind"`
		Topic     string              `json:"topic"`
		Status    string              `json:"status"`
		Progress  int                 `json:"progress"`
		Outcome   domain.Outcome      `json:"outcome,omitempty"`
		CreatedAt time.Time           `json:"created_at"`
	}

	snaps := s.manager.Sessions()
	out := make([]summary, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, summary{
			SessionID: snap.ID,
			Kind:      snap.Kind,
			Topic:     snap.Topic,
			Status:    snap.Status,
			Progress:  snap.Progress,
			Outcome:   snap.Outcome,
			CreatedAt: snap.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": out,
		"total":    len(out),
	})
}

// handleGetSession handles getting a full session snapshot
func (s *Server) handleGetSession(c *gin.Context) {
	snap, err := s.manager.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// handleGetProgress handles polling the latest progress event
func (s *Server) handleGetProgress(c *gin.Context) {
	event, err := s.manager.Progress(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, event)
}

// handleGetResult handles getting the result of a terminal session
func (s *Server) handleGetResult(c *gin.Context) {
	result, err := s.manager.Result(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleCancelSession handles session cancellation
func (s *Server) handleCancelSession(c *gin.Context) {
	sessionID := c.Param("id")

	if err := s.manager.Cancel(sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionTerminal) {
			abortWithError(c, http.StatusConflict, "CANCELLATION_FAILED", err.Error())
			return
		}
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"session_id":   sessionID,
		"status":       "cancelling",
		"requested_at": time.Now().UTC(),
	})
}

// handleHistory handles listing the recorded events of a session
func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", "Event history not available")
		return
	}

	sessionID := c.Param("id")
	events, err := s.history.History(c.Request.Context(), sessionID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"events":     events,
	})
}
