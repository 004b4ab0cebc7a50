package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quill/internal/config"
	"quill/internal/db"
	"quill/internal/handlers"
	"quill/internal/logging"
	"quill/internal/middleware"
	"quill/internal/ratelimit"
	"quill/internal/router"
	"quill/internal/services"
	"quill/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	log := logging.New("server")

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, reading configuration from the environment")
	}

	cfg := config.Load()
	logging.SetLevel(cfg.LogLevel)

	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Error("database setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	cache, err := utils.NewCache(cfg.CacheSize)
	if err != nil {
		log.Error("cache setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	var limiter middleware.Limiter
	if cfg.IsProduction() && cfg.RedisURL != "" {
		rl, err := ratelimit.NewRedisLimiter(cfg.RedisURL, cfg.RateLimitMax, cfg.RateLimitWindow)
		if err != nil {
			log.Error("rate limiter setup failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer rl.Close()
		limiter = rl
	}

	engine := router.NewEngine(cfg, router.Deps{
		DB:        conn,
		Users:     services.NewUserService(conn, cfg.JWTSecret, cfg.TokenTTL).WithPostCache(cache),
		Posts:     services.NewPostService(conn, cache),
		Comments:  services.NewCommentService(conn),
		Responder: handlers.Responder{ExposeErrors: !cfg.IsProduction()},
	}, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", slog.String("addr", srv.Addr), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", slog.Any("error", err))
	}
	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("server stopped")
}
