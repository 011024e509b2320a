package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wizrdcoder/blog-api/config"
	"github.com/wizrdcoder/blog-api/db"
	authhandler "github.com/wizrdcoder/blog-api/internal/auth/handler"
	authrepo "github.com/wizrdcoder/blog-api/internal/auth/repository/postgres"
	authservice "github.com/wizrdcoder/blog-api/internal/auth/service"
	"github.com/wizrdcoder/blog-api/internal/auth/session"
	"github.com/wizrdcoder/blog-api/internal/events"
	"github.com/wizrdcoder/blog-api/internal/logging"
	posthandler "github.com/wizrdcoder/blog-api/internal/post/handler"
	postrepo "github.com/wizrdcoder/blog-api/internal/post/repository/postgres"
	postservice "github.com/wizrdcoder/blog-api/internal/post/service"
	"github.com/wizrdcoder/blog-api/internal/ratelimit"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Fatal("postgres init failed", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis init failed", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers, events.UserEventsTopic)
		defer func() { _ = producer.Close() }()
		publisher = producer
	}

	tokenService, err := authservice.NewTokenService(cfg.SecretKey, cfg.JWTAlgorithm, cfg.AccessExpiryMin)
	if err != nil {
		logger.Fatal("token service init failed", zap.Error(err))
	}

	sessions := session.NewStore(rdb)
	userRepo := authrepo.NewPostgresRepository(pool)
	userService := authservice.NewUserService(userRepo, sessions, tokenService, publisher, logger)
	limiter := ratelimit.New(sessions, logger)
	authHandler := authhandler.NewAuthHandler(userService, logger, cfg.IsProduction())

	postRepo := postrepo.NewPostgresRepository(pool)
	postService := postservice.NewPostService(postRepo)
	postHandler := posthandler.NewPostHandler(postService, logger)

	app := fiber.New()
	authhandler.RegisterRoutes(app, authHandler, limiter, authhandler.RateLimits{
		Auth: cfg.AuthRateLimit,
		API:  cfg.APIRateLimit,
	})
	posthandler.RegisterRoutes(app, postHandler, authHandler.RequireUser)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
