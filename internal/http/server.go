// Package http provides the HTTP servers of the application: the public API server and
// the Prometheus metrics server.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/secrethold/internal/metrics"
	secretsHTTP "github.com/allisson/secrethold/internal/secrets/http"
)

// ReadinessCheck reports whether a backing component can serve requests.
type ReadinessCheck func(ctx context.Context) error

// RouterConfig carries the router options that come from configuration.
type RouterConfig struct {
	CORSEnabled          bool
	CORSAllowOrigins     string
	RateLimitEnabled     bool
	RateLimitRequestsSec float64
	RateLimitBurst       int
	MetricsNamespace     string
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *gin.Engine
	checks map[string]ReadinessCheck
	logger *slog.Logger
}

// NewServer creates a new HTTP server. checks are run by the /ready endpoint, keyed by
// the component name reported in its response.
func NewServer(
	checks map[string]ReadinessCheck,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		checks: checks,
		logger: logger,
		server: newStdServer(host, port, nil),
	}
}

// SetupRouter registers middleware and routes. The rate limiter janitor stops when ctx
// is cancelled.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg RouterConfig,
	secretHandler *secretsHTTP.SecretHandler,
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

	// PIN bearing endpoints are rate limited per client IP to slow down guessing.
	pinGuard := func(c *gin.Context) { c.Next() }
	if cfg.RateLimitEnabled {
		pinGuard = IPRateLimitMiddleware(ctx, cfg.RateLimitRequestsSec, cfg.RateLimitBurst, s.logger)
	}

	v1 := router.Group("/v1")
	{
		secrets := v1.Group("/secrets")
		secrets.PUT("/:id", secretHandler.SetHandler)
		secrets.POST("/:id/reveal", pinGuard, secretHandler.RevealHandler)
		secrets.POST("/:id/pin", pinGuard, secretHandler.ChangePinHandler)
		secrets.DELETE("/:id", secretHandler.DeleteHandler)
		secrets.GET("/:id/cached", secretHandler.CachedHandler)
		secrets.DELETE("/:id/cache", secretHandler.DeleteCacheHandler)

		v1.DELETE("/cache", secretHandler.CleanCacheHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router is not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	ready := true
	components := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.String("component", name), slog.Any("error", err))
			components[name] = "error"
			ready = false
			continue
		}
		components[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
