package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/bridge-pay/bridge-api/internal/config"
	"github.com/bridge-pay/bridge-api/internal/domain/notification"
	"github.com/bridge-pay/bridge-api/internal/domain/user"
	"github.com/bridge-pay/bridge-api/internal/domain/wallet"
	"github.com/bridge-pay/bridge-api/internal/middleware"
	"github.com/bridge-pay/bridge-api/internal/pkg/database"
	"github.com/bridge-pay/bridge-api/internal/pkg/jwt"
	"github.com/bridge-pay/bridge-api/internal/pkg/logger"
	pkgresponse "github.com/bridge-pay/bridge-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Bridge API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	// ---------- Services ----------
	notificationService := notification.NewService(notificationRepo)
	walletService := wallet.NewService(walletRepo, userRepo, notification.NewWalletSink(notificationService), wallet.Policy{
		MaxAttempts:  cfg.TransferMaxAttempts,
		ScopeTimeout: cfg.TransferTimeout,
	})

	// ---------- Handlers ----------
	walletHandler := wallet.NewHandler(walletService)
	notificationHandler := notification.NewHandler(notificationService)

	authMiddleware := middleware.Auth(jwtService)
	paymentRateLimit := middleware.RateLimit(redis, "payment", cfg.PaymentRateLimit, cfg.PaymentRateWindow)

	// Retention sweep for read notifications
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go notification.NewCleanupJob(notificationRepo, 90*24*time.Hour).Start(cleanupCtx, 6*time.Hour)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/wallet", walletHandler.Routes(authMiddleware, paymentRateLimit))
		r.Mount("/notifications", notificationHandler.Routes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cleanupCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
