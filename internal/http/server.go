// Package http provides the API and metrics HTTP servers.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/keywrapper/internal/config"
	keywrapHTTP "github.com/allisson/keywrapper/internal/keywrap/http"
	keywrapService "github.com/allisson/keywrapper/internal/keywrap/service"
	"github.com/allisson/keywrapper/internal/metrics"
)

// Server is the key-wrapping API server.
type Server struct {
	server       *http.Server
	router       *gin.Engine
	logger       *slog.Logger
	manager      keywrapService.WrapperManager
	shuttingDown atomic.Bool
}

// NewServer creates a new API server. The wrapper manager backs the readiness probe.
func NewServer(manager keywrapService.WrapperManager, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		logger:  logger,
		manager: manager,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine: recovery, request IDs, access logging, optional
// CORS and metrics, then the /v1/keywrap routes behind the optional rate limiter.
// ctx bounds background work started by middleware.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	keyWrapHandler *keywrapHTTP.KeyWrapHandler,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	keywrap := v1.Group("/keywrap")
	keywrap.POST("/keys", keyWrapHandler.CreateWrappingKeyHandler)
	keywrap.POST("/encrypt", keyWrapHandler.EncryptHandler)
	keywrap.POST("/reencrypt", keyWrapHandler.ReencryptHandler)
	keywrap.POST("/decrypt", keyWrapHandler.DecryptHandler)
	keywrap.POST("/rewrap", keyWrapHandler.RewrapHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. SetupRouter must have been called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown marks the server not ready and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shuttingDown.Store(true)
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready when the default codec can be instantiated and the
// server is not shutting down.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"codec": "ok"}
	ready := true

	if s.manager == nil {
		components["codec"] = "error"
		ready = false
	} else if _, err := s.manager.Default(); err != nil {
		components["codec"] = "error"
		ready = false
	}

	if s.shuttingDown.Load() {
		components["server"] = "shutting_down"
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
