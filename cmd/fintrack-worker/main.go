package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/remote"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := backend.NewStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize remote store", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if closer, ok := store.(remote.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close remote store", log.FieldError, err)
			}
		}
	}()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPReloadExchange)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(store, amqpClient)

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, cancel)

	logger.Info("Starting fintrack-worker", "backend", cfg.DataBackend, "queue", cfg.AMQPQueue)

	err = amqpClient.ConsumeChanges(ctx, func(msg *amqp.ChangeMessage) error {
		return syncWorker.HandleChange(ctx, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Worker stopped gracefully")
}
