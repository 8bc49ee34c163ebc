// cmd/gateway/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/auth"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/domain/checkout"
	"github.com/your-org/storefront-gateway/internal/domain/profile"
	"github.com/your-org/storefront-gateway/internal/domain/session"
	"github.com/your-org/storefront-gateway/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-gateway/internal/infrastructure/storeapi"
	"github.com/your-org/storefront-gateway/internal/interfaces/http"
	"github.com/your-org/storefront-gateway/internal/pkg/bus"
	"github.com/your-org/storefront-gateway/internal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg)
	appLogger.Infof("Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	if err := redisClient.Health(); err != nil {
		log.Fatalf("Redis health check failed: %v", err)
	}

	// Remote store API client
	api := storeapi.NewClient(cfg)

	// Session store and cross-component event bus
	sessionStore := session.NewRedisStore(redisClient.GetClient(), cfg.Session.TTL)
	eventBus := bus.New()

	// Domain services
	authService := auth.NewService(api, eventBus, appLogger)
	cartService := cart.NewService(api, eventBus, appLogger)
	checkoutService := checkout.NewService(api, eventBus, appLogger, cfg.Checkout.AckWindow)
	profileService := profile.NewService(api, appLogger)

	badge := cart.NewBadgeCache(cartService)
	badge.Start(eventBus)
	defer badge.Stop()

	// Create and start HTTP server
	server := http.NewServer(cfg, appLogger, redisClient.GetClient(), http.Deps{
		SessionStore:    sessionStore,
		StoreAPI:        api,
		EventBus:        eventBus,
		AuthService:     authService,
		CartService:     cartService,
		Badge:           badge,
		CheckoutService: checkoutService,
		ProfileService:  profileService,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLogger.Errorf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	appLogger.Info("Server shutdown completed")
}
