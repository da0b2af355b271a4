package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pageza/dininghall/backend/config"
	"github.com/pageza/dininghall/backend/internal/api"
	"github.com/pageza/dininghall/backend/internal/database"
	"github.com/pageza/dininghall/backend/internal/ingest"
	"github.com/pageza/dininghall/backend/internal/logging"
	"github.com/pageza/dininghall/backend/internal/middleware"
	"github.com/pageza/dininghall/backend/internal/router"
	"github.com/pageza/dininghall/backend/internal/server"
	"github.com/pageza/dininghall/backend/internal/service"
	"github.com/pageza/dininghall/backend/internal/snapshot"
	"github.com/pageza/dininghall/backend/internal/tools"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logging.Setup(cfg.LogLevel)
	log.Info("starting api", "environment", config.GetEnvironment())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	foods := service.NewFoodService(db)
	orders := service.NewOrderService(db)
	tracker := service.NewTrackerService(db)
	registry, err := tools.NewDefaultRegistry(orders, foods, tracker)
	if err != nil {
		return err
	}

	deps := api.Deps{
		DB:      db,
		Foods:   foods,
		Orders:  orders,
		Tracker: tracker,
		Tools:   registry,
	}

	store, err := snapshot.Open(ctx, cfg)
	if err != nil {
		log.Warn("snapshot store unavailable, ingest routes disabled", "error", err)
	} else {
		deps.Ingest = service.NewIngestService(nil, store, ingest.NewLoader(db, log), log)
	}

	// Redis backs chat sessions and rate limiting; without it both are off
	redisClient, err := database.NewRedisClient(cfg, log)
	if err != nil {
		log.Warn("redis unavailable, chat and rate limiting disabled", "error", err)
	} else {
		defer redisClient.Close()
		deps.Limiter = middleware.NewChatRateLimiter(redisClient, log)
		model, err := service.NewGeminiClient(cfg)
		if err != nil {
			log.Warn("chat disabled", "error", err)
		} else {
			deps.Chat = service.NewChatService(model, registry, redisClient, log)
		}
	}

	handler := router.SetupRouter(cfg, log, deps)
	return server.New(cfg.Addr(), handler, log).Run(ctx)
}
