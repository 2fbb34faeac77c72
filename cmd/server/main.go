package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medportal/internal/api"
	"medportal/internal/app/service"
	"medportal/internal/domain/repository"
	"medportal/internal/platform/cache"
	"medportal/internal/platform/config"
	"medportal/internal/platform/database"
	"medportal/internal/platform/logging"
	"medportal/internal/platform/storage"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	log.Info("Configuration loaded.")

	ctx := context.Background()

	// 2. Initialize Database
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Database connection failed")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("Schema migration failed")
	}
	log.Info("Database connected.")

	// 3. Initialize Redis (optional token cache)
	rdb, err := cache.Connect(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Redis connection failed")
	}
	if rdb != nil {
		defer rdb.Close()
		log.WithField("addr", cfg.RedisAddr).Info("Redis connected.")
	} else {
		log.Info("REDIS_ADDR not set, token cache disabled.")
	}

	media, err := storage.NewMediaStore(cfg.MediaRoot, cfg.MediaURL)
	if err != nil {
		log.WithError(err).Fatal("Media storage unavailable")
	}

	// 4. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	profileRepo := repository.NewPgProfileRepository(db)
	tokenRepo := repository.NewPgTokenRepository(db)
	tokenCache := repository.NewTokenCache(rdb, cfg.TokenCacheTTL)

	// 5. Initialize Services
	authService := service.NewAuthService(db, userRepo, profileRepo, tokenRepo, tokenCache, media, log,
		service.AuthServiceConfig{BcryptCost: cfg.BcryptCost})
	dashboardService := service.NewDashboardService(media)
	userService := service.NewUserService(userRepo, media)

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(log, cfg.RequestTimeout, media, authService, dashboardService, userService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Infof("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatalf("Could not listen on %s", cfg.APIPort)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
		return
	}
	log.Info("Server stopped gracefully.")
}
