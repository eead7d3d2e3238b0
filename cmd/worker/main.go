package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"creationhub/internal/adapter/repo"
	"creationhub/internal/infra"
	"creationhub/internal/queue"
	"creationhub/internal/statuscache"
	"creationhub/internal/storage"
	"creationhub/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	var status *statuscache.StatusCache
	cache, err := infra.ConnectCache(cfg.RedisAddr)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, status snapshots disabled")
	} else {
		defer cache.Close()
		status = statuscache.New(cache)
	}

	files, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init file store")
	}

	processor, err := worker.NewProcessor(worker.ProcessorDeps{
		Files:       files,
		Images:      repo.NewImageRepository(dbpool),
		StatusCache: status,
		FileBaseURL: "/files",
		Logger:      &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build processor")
	}

	consumer, err := queue.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect kafka")
	}
	defer consumer.Close()

	logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaPersistTopic).Msg("worker consuming")
	for {
		if err := consumer.Consume(ctx, cfg.KafkaPersistTopic, processor.Handle); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Error().Err(err).Msg("consume session ended")
		}
		if ctx.Err() != nil {
			break
		}
	}
	logger.Info().Msg("worker stopped")
}
