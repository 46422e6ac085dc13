package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aescanero/debatehub/internal/application/orchestrator"
	"github.com/aescanero/debatehub/internal/application/workers"
	"github.com/aescanero/debatehub/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DefaultKeepAlive is the SSE comment interval
const DefaultKeepAlive = 15 * time.Second

// ProviderCatalog lists the selectable provider names
type ProviderCatalog interface {
	Names() []string
}

// Server represents the HTTP API server
type Server struct {
	router    *gin.Engine
	server    *http.Server
	manager   *orchestrator.Manager
	providers ProviderCatalog
	history   ports.EventHistory
	health    *workers.HealthMonitor
	keepAlive time.Duration
	logger    *zap.Logger
}

// Config holds HTTP server configuration
type Config struct {
	Port      int
	Manager   *orchestrator.Manager
	Providers ProviderCatalog
	// History serves recorded events. Nil disables the history endpoint.
	History ports.EventHistory
	// Health reports worker pool health. Nil reports only session counts.
	Health    *workers.HealthMonitor
	Gatherer  prometheus.Gatherer
	KeepAlive time.Duration
	Logger    *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(cfg.Logger))
	router.Use(corsMiddleware())

	keepAlive := cfg.KeepAlive
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}

	s := &Server{
		router:    router,
		manager:   cfg.Manager,
		providers: cfg.Providers,
		history:   cfg.History,
		health:    cfg.Health,
		keepAlive: keepAlive,
		logger:    cfg.Logger,
	}

	s.setupRoutes(cfg.Gatherer)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// Metrics
	if gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	} else {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/providers", s.handleListProviders)

		// Session endpoints
		v1.POST("/sessions", s.handleCreateDebate)
		v1.POST("/business", s.handleCreateBusiness)
		v1.GET("/sessions", s.handleListSessions)
		v1.GET("/sessions/:id", s.handleGetSession)
		v1.GET("/sessions/:id/progress", s.handleGetProgress)
		v1.GET("/sessions/:id/result", s.handleGetResult)
		v1.GET("/sessions/:id/events", s.handleEvents)
		v1.GET("/sessions/:id/history", s.handleHistory)
		v1.POST("/sessions/:id/cancel", s.handleCancelSession)
	}
}

// SetupWebSocket adds WebSocket handler to the server
func (s *Server) SetupWebSocket(handler interface{}) {
	if wsHandler, ok := handler.(interface {
		HandleSessionStream(*gin.Context)
	}); ok {
		s.router.GET("/api/v1/sessions/:id/ws", wsHandler.HandleSessionStream)
	}
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}
