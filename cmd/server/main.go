package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rajmarketing/backend/internal/config"
	"github.com/rajmarketing/backend/internal/db"
	"github.com/rajmarketing/backend/internal/docstore"
	"github.com/rajmarketing/backend/internal/events"
	"github.com/rajmarketing/backend/internal/github"
	"github.com/rajmarketing/backend/internal/logger"
	"github.com/rajmarketing/backend/internal/repository/postgresql"
	"github.com/rajmarketing/backend/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		zap.S().Fatalf("config error: %v", err)
	}

	log := logger.New(cfg.Debug)
	defer func() {
		_ = log.Sync()
	}()

	blobs := github.NewClient(github.Config{
		BaseURL: cfg.GitHubAPIBase,
		Owner:   cfg.GitHubOwner,
		Repo:    cfg.GitHubRepo,
		Branch:  cfg.GitHubBranch,
		Token:   cfg.GitHubToken,
	}, log)

	store := docstore.New(blobs, log, docstore.Config{
		MaxWriteAttempts: cfg.WriteMaxAttempts,
	})

	if err := store.EnsureCollections(ctx); err != nil {
		log.Fatal("failed to initialize collections", zap.Error(err))
	}

	var producer events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewKafkaProducer(cfg.KafkaBrokers)
	} else {
		producer = events.NewConsoleProducer(log)
	}

	var recorder events.Recorder
	var publisher *events.Publisher
	if cfg.OutboxEnabled() {
		database, err := db.Connect(ctx, cfg.DatabaseDSN())
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer database.Close()

		outboxRepo := postgresql.NewOutboxTaskRepo(database)
		recorder = events.NewOutboxRecorder(database, outboxRepo, cfg.KafkaTopic)
		publisher = events.NewPublisher(database, outboxRepo, producer, events.PublisherConfig{
			PollInterval: time.Second,
			BatchSize:    50,
		}, log)
		go publisher.Run(ctx)
	} else {
		recorder = events.NewDirectRecorder(producer, cfg.KafkaTopic, log)
	}

	srv := server.New(store, recorder, log)
	go func() {
		if err := srv.Run(cfg.HTTPPort); err != nil {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if publisher != nil {
		publisher.Shutdown(shutdownCtx)
	} else if err := producer.Close(); err != nil {
		log.Error("failed to close producer", zap.Error(err))
	}

	log.Info("stopped")
}
