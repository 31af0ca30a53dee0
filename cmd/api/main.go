// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/foodcart-backend/internal/config"
	"github.com/your-org/foodcart-backend/internal/domain/cart"
	"github.com/your-org/foodcart-backend/internal/domain/checkout"
	"github.com/your-org/foodcart-backend/internal/domain/pricing"
	"github.com/your-org/foodcart-backend/internal/domain/rating"
	"github.com/your-org/foodcart-backend/internal/domain/savedcart"
	"github.com/your-org/foodcart-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/foodcart-backend/internal/infrastructure/database/redis"
	"github.com/your-org/foodcart-backend/internal/infrastructure/orderapi"
	"github.com/your-org/foodcart-backend/internal/interfaces/http"
	"github.com/your-org/foodcart-backend/internal/pkg/auth"
	"github.com/your-org/foodcart-backend/internal/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting")

	// Connect to database
	db, err := postgres.NewConnection(cfg, logger.Component(log, "postgres"))
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, logger.Component(log, "redis"))
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.Health(ctx); err != nil {
		log.WithError(err).Fatal("Database health check failed")
	}
	if err := redisClient.Health(ctx); err != nil {
		log.WithError(err).Fatal("Redis health check failed")
	}
	cancel()

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), logger.Component(log, "migration"))
	if err := migration.RunAutoMigrations(); err != nil {
		log.WithError(err).Fatal("Database migration failed")
	}
	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("Index creation failed")
	}

	engine, err := pricing.NewEngine(cfg.Cart.BrownBagUnitPrice, cfg.Cart.Currency)
	if err != nil {
		log.WithError(err).Fatal("Invalid pricing configuration")
	}
	if cfg.Cart.DisplayScale >= 0 {
		engine = engine.WithScale(int32(cfg.Cart.DisplayScale))
	}

	registry, err := cart.NewRegistry(
		cfg.Cart.SessionCacheSize,
		cfg.Cart.StateKeyPrefix,
		redis.NewCartStateStore(redisClient, cfg.Cart.StateTTL),
		logger.Component(log, "cart"),
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to create cart registry")
	}

	orders := orderapi.NewClient(cfg.OrderService.BaseURL, cfg.OrderService.RequestTimeout, logger.Component(log, "orderapi"))
	ratings := rating.NewService(db.GetDB(), logger.Component(log, "rating"))

	savedCarts, err := savedcart.NewManager(orders, cfg.Cart.SessionCacheSize, logger.Component(log, "savedcart"))
	if err != nil {
		log.WithError(err).Fatal("Failed to create saved cart manager")
	}

	server := http.NewServer(cfg, http.Dependencies{
		DB:        db,
		Redis:     redisClient,
		Registry:  registry,
		Pricing:   engine,
		Checkout:  checkout.NewService(orders, engine, ratings, logger.Component(log, "checkout")),
		SavedCart: savedCarts,
		Ratings:   ratings,
		Tokens:    auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer),
	}, log)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	log.Info("Server shutdown completed")
}
