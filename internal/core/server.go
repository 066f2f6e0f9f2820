package core

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/amoylab/mockmcp/internal/common/config"
	"github.com/amoylab/mockmcp/internal/mcp/session"
	"github.com/amoylab/mockmcp/internal/tools"
	"github.com/amoylab/mockmcp/pkg/mcp"
	"github.com/amoylab/mockmcp/pkg/metrics"
	"github.com/amoylab/mockmcp/pkg/version"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server hosts the mock MCP endpoints over both transports.
type Server struct {
	logger *zap.Logger
	cfg    *config.MockServerConfig
	router *gin.Engine
	// sessions manages all active SSE sessions
	sessions session.Store
	// tools is the static registry the method router dispatches into
	tools *tools.Registry
	// metrics is nil when metrics are disabled
	metrics *metrics.Metrics
	httpSrv *http.Server
	// shutdownCh is used to signal shutdown to all SSE connections
	shutdownCh chan struct{}
	// guardrailFileCalls counts FILE guardrail checks across all sessions
	guardrailFileCalls atomic.Int64
}

// NewServer creates a new mock MCP server.
func NewServer(logger *zap.Logger, cfg *config.MockServerConfig, sessionStore session.Store, registry *tools.Registry, m *metrics.Metrics) *Server {
	s := &Server{
		logger:     logger,
		cfg:        cfg,
		router:     gin.New(),
		sessions:   sessionStore,
		tools:      registry,
		metrics:    m,
		shutdownCh: make(chan struct{}),
	}

	s.router.Use(s.loggerMiddleware())
	s.router.Use(s.recoveryMiddleware())
	if m != nil {
		s.router.Use(m.Middleware())
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.handleRoot)
	s.router.GET("/health", s.handleHealth)

	s.router.POST("/mcp", s.handleMCP)
	s.router.GET("/sse", s.handleSSE)
	s.router.POST("/message/:sessionId", s.handleMessage)

	s.router.POST("/guardrail", s.handleGuardrail)
	s.router.POST("/files", s.handleFiles)

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// handleRoot serves the static server descriptor.
func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":      "mockmcp",
		"version":   version.Get(),
		"protocol":  "MCP " + mcp.LatestProtocolVersion,
		"transport": []string{"Streamable HTTP", "SSE"},
		"endpoints": gin.H{
			"mcp": "/mcp",
			"sse": "/sse",
		},
	})
}

// handleHealth reports the active session ids.
func (s *Server) handleHealth(c *gin.Context) {
	conns, err := s.sessions.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}

	ids := make([]string, 0, len(conns))
	for _, conn := range conns {
		ids = append(ids, conn.Meta().ID)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"active_sessions": len(ids),
		"sessions":        ids,
	})
}

// Start begins serving and blocks until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.router,
	}
	s.logger.Info("starting mock MCP server",
		zap.Int("port", s.cfg.Port),
		zap.String("streamable_endpoint", "/mcp"),
		zap.String("sse_endpoint", "/sse"))

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server and all SSE streams.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	close(s.shutdownCh)

	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
