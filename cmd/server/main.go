// Package main is the entry point for the FormVista API server.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Karan-Salvi/FormVista-sub000/internal/auth"
	"github.com/Karan-Salvi/FormVista-sub000/internal/cache"
	"github.com/Karan-Salvi/FormVista-sub000/internal/config"
	"github.com/Karan-Salvi/FormVista-sub000/internal/database"
	"github.com/Karan-Salvi/FormVista-sub000/internal/handler"
	"github.com/Karan-Salvi/FormVista-sub000/internal/middleware"
	"github.com/Karan-Salvi/FormVista-sub000/internal/payment"
	"github.com/Karan-Salvi/FormVista-sub000/internal/pkg/response"
	"github.com/Karan-Salvi/FormVista-sub000/internal/repository"
	"github.com/Karan-Salvi/FormVista-sub000/internal/service"
)

func main() {
	// Setup structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	response.Configure(cfg.Server.APIVersion, cfg.Server.IsProduction())

	logger.Info("Starting FormVista API",
		slog.String("environment", cfg.Server.Environment),
		slog.Int("port", cfg.Server.Port),
	)

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Run migrations
	if err := db.RunMigrations(cfg.Database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database migrations completed")

	// Connect to Redis
	redis, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()
	logger.Info("Connected to Redis")

	store, err := cache.NewRedisStore(redis, cfg.Cache.CompressThreshold)
	if err != nil {
		log.Fatalf("Failed to create cache store: %v", err)
	}
	defer store.Close()
	formCache := cache.New(store, logger)

	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}

	// Repositories
	pool := db.Pool()
	users := repository.NewUserRepository(pool)
	forms := repository.NewFormRepository(pool)
	blocks := repository.NewBlockRepository(pool)
	responses := repository.NewResponseRepository(pool)
	analytics := repository.NewAnalyticsRepository(pool)
	subscriptions := repository.NewSubscriptionRepository(pool)
	payments := repository.NewPaymentRepository(pool)
	events := repository.NewWebhookEventRepository(pool)

	// Services
	formService := service.NewFormService(forms, blocks, analytics, formCache, cfg.Cache, logger)
	responseService := service.NewResponseService(forms, blocks, responses, analytics, formCache, cfg.Cache, logger)
	statsService := service.NewStatsService(forms, analytics)
	billingService := service.NewBillingService(
		users, subscriptions, payments, events,
		payment.NewStripe(cfg.Stripe, nil),
		cfg.Webhooks.Retention,
		logger,
	)

	// Setup router
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.Timing)
	r.Use(middleware.Metrics())

	// Health check endpoints (no auth required)
	health := handler.NewHealthHandler(db, redis)
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Mount("/v1", handler.NewRouter(handler.Dependencies{
		Forms:     formService,
		Responses: responseService,
		Stats:     statsService,
		Billing:   billingService,
		Verifier:  verifier,
		Users:     users,
		Limiter:   redis,
		RateLimit: middleware.NewRateLimitConfig(cfg.RateLimit),
		Logger:    logger,
	}))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go pruneWebhookEvents(ctx, billingService, cfg.Webhooks.PruneInterval, logger)

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  time.Minute,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("Shutting down server", slog.String("signal", sig.String()))
	stop()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	logger.Info("Server stopped gracefully")
}

// pruneWebhookEvents deletes expired webhook log rows every interval until
// ctx is canceled.
func pruneWebhookEvents(ctx context.Context, billing service.BillingService, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := billing.PruneWebhookEvents(ctx)
			if err != nil {
				logger.Error("webhook event prune failed", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				logger.Info("pruned webhook events", slog.Int64("deleted", n))
			}
		}
	}
}
