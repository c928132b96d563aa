// Package main is the entry point for the merchant API server.
// It loads configuration, connects the store and cache, wires the services
// and serves HTTP until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"merchantapi/internal/config"
	"merchantapi/internal/handlers"
	"merchantapi/internal/logger"
	"merchantapi/internal/metrics"
	"merchantapi/internal/middleware"
	"merchantapi/internal/repositories"
	"merchantapi/internal/repositories/cache"
	"merchantapi/internal/routes"
	"merchantapi/internal/services/auth"
	"merchantapi/internal/services/merchant"
	"merchantapi/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repositories.Connect(cfg.Database, zlog)
	if err != nil {
		return err
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			zlog.Warn("Failed to close database connection", zap.Error(err))
		}
	}()
	go repositories.LogPoolStats(ctx, db, time.Minute, zlog)

	store, err := cache.New(cfg.Cache, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			zlog.Warn("Failed to close cache", zap.Error(err))
		}
	}()
	if err := store.HealthCheck(ctx); err != nil {
		return err
	}
	zlog.Info("Cache connected", zap.String("driver", cfg.Cache.Driver))

	prom := metrics.NewPrometheus(cfg.Log.ServiceName)
	hasher := utils.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := utils.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)

	merchantSvc := merchant.NewService(
		repositories.NewMerchantRepository(db),
		store,
		hasher,
		prom,
		zlog,
	)
	authSvc := auth.NewService(merchantSvc, auth.NewPasswordAuthenticator(merchantSvc, hasher), issuer, zlog)

	// entries written by a previous deployment are never served
	if err := merchantSvc.ResetCache(ctx); err != nil {
		zlog.Warn("Failed to reset merchant cache", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.Log.ServiceName,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestID(zlog))
	app.Use(logger.Middleware())
	app.Use(prom.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	routes.SetupRoutes(app, routes.Dependencies{
		Auth:      handlers.NewAuthHandler(authSvc),
		Merchants: handlers.NewMerchantHandler(merchantSvc),
		Health: handlers.NewHealthHandler(
			func(ctx context.Context) error { return repositories.Ping(ctx, db) },
			store.HealthCheck,
		),
		AuthMiddleware: middleware.NewAuthMiddleware(issuer),
		Metrics:        prom,
		AuthRateLimit:  cfg.HTTP.AuthRateLimit,
		AuthRateWindow: cfg.HTTP.AuthRateWindow,
	})

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("HTTP server listening", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("Shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
