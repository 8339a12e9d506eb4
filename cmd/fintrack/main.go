package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/remote"
	"fintrack/internal/repository"
	"fintrack/internal/services"
	"fintrack/internal/snapshot"
	"fintrack/internal/taxonomy"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := backend.NewStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize remote store", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer closeStore(logger, store)

	snapshots := snapshot.NewFile(cfg.SnapshotDir)

	var provider auth.Provider
	if cfg.AuthTokens != "" {
		provider = auth.NewTokenProvider(cfg.AuthTokens)
	}

	var srv *apphttp.Server

	// First access per user: warm-start from the local snapshot, then replace
	// with the remote collection once it answers. Last full load wins.
	registry := auth.NewRegistry(provider, func(user auth.UserID, repo *repository.Repository) {
		if snap, ok, err := snapshots.Load(user); err != nil {
			logger.Warn("Failed to load local snapshot", log.FieldUser, user, log.FieldError, err)
		} else if ok {
			repo.ReplaceAll(snap)
			logger.Info("Loaded local snapshot", log.FieldUser, user,
				"transactions", len(snap.Transactions), "goals", len(snap.Goals))
		}

		go func() {
			snap, err := store.LoadAll(ctx, user)
			if err != nil {
				logger.Error("Failed to load remote collection", log.FieldUser, user, log.FieldError, err)
				return
			}
			repo.ReplaceAll(snap)
			if err := snapshots.Save(user, snap); err != nil {
				logger.Warn("Failed to refresh local snapshot", log.FieldUser, user, log.FieldError, err)
			}
			if srv != nil {
				srv.InvalidateUser(user)
			}
			logger.Info("Loaded remote collection", log.FieldUser, user,
				"transactions", len(snap.Transactions), "goals", len(snap.Goals))
		}()
	})

	var publisher services.ChangePublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPReloadExchange)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("Change feed enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Change feed disabled - no AMQP_URL provided")
	}

	finance := services.NewFinanceService(registry, publisher, snapshots)

	var tax *taxonomy.Taxonomy
	if cfg.CategoriesFile != "" {
		tax, err = taxonomy.Load(cfg.CategoriesFile)
		if err != nil {
			logger.Error("Failed to load categories file", log.FieldError, err, "path", cfg.CategoriesFile)
			os.Exit(1)
		}
	}

	srv = apphttp.NewServer(":"+cfg.Port, finance, provider, tax, apphttp.Options{
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		if err := srv.Shutdown(stopCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeReloads(gctx, func(msg *amqp.ReloadMessage) {
				snap, err := store.LoadAll(gctx, msg.User)
				if err != nil {
					logger.Error("Reload failed", log.FieldUser, msg.User, log.FieldError, err)
					return
				}
				finance.ReplaceAll(gctx, msg.User, snap)
				srv.InvalidateUser(msg.User)
				logger.Info("Reloaded collection from remote", log.FieldUser, msg.User)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}

func closeStore(logger *log.Logger, store remote.Store) {
	if closer, ok := store.(remote.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close remote store", log.FieldError, err)
		}
	}
}
