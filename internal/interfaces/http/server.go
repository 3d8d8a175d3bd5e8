// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/app"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database/redis"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/routes"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// maxRequestBody caps JSON request bodies
const maxRequestBody = 1 << 20

// Server represents the HTTP server
type Server struct {
	app        *app.App
	logger     *logrus.Logger
	gin        *gin.Engine
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer builds the router and HTTP server for a wired application
func NewServer(a *app.App) *Server {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		app:       a,
		logger:    a.Logger,
		gin:       gin.New(),
		startedAt: time.Now(),
	}

	if err := s.gin.SetTrustedProxies(a.Config.Security.TrustedProxies); err != nil {
		s.logger.WithError(err).Warn("Invalid trusted proxies, trusting none")
		_ = s.gin.SetTrustedProxies(nil)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + a.Config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.logger.WithFields(logrus.Fields{
		"port":     s.app.Config.Server.Port,
		"base_url": "/api/v1",
		"driver":   s.app.Stores.Driver,
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

func (s *Server) setupMiddleware() {
	cfg := s.app.Config

	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	if cfg.Tracing.Enabled {
		s.gin.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.Metrics())
	s.gin.Use(middleware.CORS(cfg.Security))
	s.gin.Use(middleware.SecurityHeaders())

	var limiter middleware.Limiter
	if s.app.Redis != nil {
		limiter = redis.NewRateLimiter(s.app.Redis.Redis)
	}
	s.gin.Use(middleware.RateLimit(limiter, cfg.Security.RateLimitPerMinute, s.logger))

	s.gin.Use(middleware.RequestSizeLimit(maxRequestBody))
	s.gin.Use(middleware.Timeout(cfg.Server.RequestTimeout))
}

func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)
	s.gin.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, s.app)

	s.gin.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Route not found",
		})
	})
}

// healthCheck reports liveness without touching backends
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.app.Config.App.Version,
		"environment": s.app.Config.App.Environment,
	})
}

// readinessCheck pings every backend
func (s *Server) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := s.app.Ready(ctx); err != nil {
		s.logger.WithError(err).Warn("Readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  "dependency check failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
