// internal/interfaces/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/foodcart-backend/internal/config"
	"github.com/your-org/foodcart-backend/internal/domain/cart"
	"github.com/your-org/foodcart-backend/internal/domain/checkout"
	"github.com/your-org/foodcart-backend/internal/domain/pricing"
	"github.com/your-org/foodcart-backend/internal/domain/rating"
	"github.com/your-org/foodcart-backend/internal/domain/savedcart"
	"github.com/your-org/foodcart-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/foodcart-backend/internal/infrastructure/database/redis"
	"github.com/your-org/foodcart-backend/internal/interfaces/http/handlers"
	"github.com/your-org/foodcart-backend/internal/interfaces/http/middleware"
	"github.com/your-org/foodcart-backend/internal/interfaces/http/routes"
	"github.com/your-org/foodcart-backend/internal/pkg/logger"
	"github.com/your-org/foodcart-backend/internal/pkg/metrics"
)

const healthCheckTimeout = 3 * time.Second

// Dependencies are the services the HTTP layer is built on
type Dependencies struct {
	DB        *postgres.DB
	Redis     *redis.Client
	Registry  *cart.Registry
	Pricing   pricing.Engine
	Checkout  *checkout.Service
	SavedCart *savedcart.Manager
	Ratings   *rating.Service
	Tokens    middleware.TokenValidator
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	deps       Dependencies
	logger     *logrus.Logger
	gin        *gin.Engine
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, deps Dependencies, log *logrus.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		deps:      deps,
		logger:    log,
		gin:       gin.New(),
		startedAt: time.Now(),
	}
	if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		log.WithError(err).Warn("Ignoring invalid trusted proxies")
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.WithFields(logrus.Fields{
		"port":     s.config.Server.Port,
		"base_url": fmt.Sprintf("http://localhost:%s/api/v1", s.config.Server.Port),
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.Metrics())
	s.gin.Use(middleware.CORS(s.config.Security))
	s.gin.Use(middleware.SecurityHeaders())
	if s.deps.Redis != nil {
		s.gin.Use(middleware.RateLimit(
			s.config.Security.RateLimitPerMinute,
			s.deps.Redis.GetClient(),
			logger.Component(s.logger, "rate_limit"),
		))
	}
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)
	s.gin.GET("/metrics", gin.WrapH(metrics.Handler()))

	s.deps.Registry.SetObserver(func(a cart.Action) {
		metrics.RecordCartAction(a.Name())
	})
	s.deps.Checkout.SetObserver(metrics.RecordSubmission)

	sessions := handlers.NewSessions(
		s.deps.Registry,
		s.config.Cart.SessionCookieName,
		s.config.Cart.SessionCookieTTL,
		s.config.IsProduction(),
	)
	h := routes.Handlers{
		Cart:      handlers.NewCartHandler(sessions, s.deps.Pricing),
		Checkout:  handlers.NewCheckoutHandler(sessions, s.deps.Checkout, s.deps.Pricing, logger.Component(s.logger, "checkout_handler")),
		SavedCart: handlers.NewSavedCartHandler(sessions, s.deps.SavedCart, s.deps.Pricing, logger.Component(s.logger, "saved_cart_handler")),
		Rating:    handlers.NewRatingHandler(s.deps.Ratings, logger.Component(s.logger, "rating_handler")),
	}

	routes.SetupRoutes(s.gin.Group("/api/v1"), h, s.deps.Tokens)
}

// healthCheck reports liveness together with the state of the backing stores
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := gin.H{}
	healthy := true
	if s.deps.DB != nil {
		if err := s.deps.DB.Health(ctx); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if s.deps.Redis != nil {
		if err := s.deps.Redis.Health(ctx); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":      status,
		"checks":      checks,
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ready",
		"timestamp":       time.Now().UTC(),
		"uptime":          time.Since(s.startedAt).Round(time.Second).String(),
		"cached_sessions": s.deps.Registry.Len(),
	})
}
