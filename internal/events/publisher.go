package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rajmarketing/backend/internal/db"
	"github.com/rajmarketing/backend/internal/metrics"
	"github.com/rajmarketing/backend/internal/repository"
	"github.com/rajmarketing/backend/internal/repository/postgresql"
)

type PublisherConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// Publisher polls the outbox and relays pending events to the
// producer, marking each task COMPLETED or FAILED.
type Publisher struct {
	db       db.DB
	repo     *postgresql.OutboxTaskRepo
	producer Producer
	config   PublisherConfig
	logger   *zap.Logger

	wg       sync.WaitGroup
	shutdown chan struct{}
	stopOnce sync.Once
}

func NewPublisher(database db.DB, repo *postgresql.OutboxTaskRepo, producer Producer, cfg PublisherConfig, logger *zap.Logger) *Publisher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Publisher{
		db:       database,
		repo:     repo,
		producer: producer,
		config:   cfg,
		logger:   logger,
		shutdown: make(chan struct{}),
	}
}

func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info("starting outbox publisher",
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Int("batch_size", p.config.BatchSize))

	p.wg.Add(1)
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error("failed to process outbox batch", zap.Error(err))
			}
		case <-p.shutdown:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *Publisher) Shutdown(ctx context.Context) {
	p.stopOnce.Do(func() {
		close(p.shutdown)

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			p.logger.Info("outbox publisher stopped")
		case <-ctx.Done():
			p.logger.Warn("outbox publisher shutdown timed out")
		}

		if err := p.producer.Close(); err != nil {
			p.logger.Error("failed to close producer", zap.Error(err))
		}
	})
}

// processBatch claims a batch of tasks inside a transaction, marks
// them PROCESSING, then delivers each outside the transaction.
func (p *Publisher) processBatch(ctx context.Context) error {
	tx, err := p.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	tasks, err := p.repo.GetProcessableTasks(ctx, tx, p.config.BatchSize)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return tx.Commit(ctx)
	}

	for _, task := range tasks {
		if err := p.repo.UpdateTaskStatusTx(ctx, tx, task.ID, repository.TaskStatusProcessing, task.Attempts, nil, nil); err != nil {
			return fmt.Errorf("failed to mark task %s processing: %w", task.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit claimed batch: %w", err)
	}

	for _, task := range tasks {
		select {
		case <-p.shutdown:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := p.deliver(ctx, task); err != nil {
			p.logger.Error("failed to deliver outbox task",
				zap.String("task_id", task.ID.String()),
				zap.Error(err))
		}
	}
	return nil
}

func (p *Publisher) deliver(ctx context.Context, task *repository.OutboxTask) error {
	attempts := task.Attempts + 1

	if err := p.producer.SendMessage(ctx, task.Topic, []byte(task.ID.String()), task.Payload); err != nil {
		errMsg := err.Error()
		if updErr := p.repo.UpdateTaskStatus(ctx, task.ID, repository.TaskStatusFailed, attempts, &errMsg, nil); updErr != nil {
			return fmt.Errorf("send failed (%v), status update failed: %w", err, updErr)
		}
		return err
	}

	metrics.EventsPublishedTotal.Inc()
	now := time.Now().UTC()
	return p.repo.UpdateTaskStatus(ctx, task.ID, repository.TaskStatusCompleted, attempts, nil, &now)
}
