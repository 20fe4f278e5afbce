package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rajmarketing/backend/internal/db"
	"github.com/rajmarketing/backend/internal/metrics"
	"github.com/rajmarketing/backend/internal/repository"
)

// Recorder accepts a domain event for eventual delivery. Recording is
// best-effort relative to the store mutation it follows: failures are
// reported but must not fail the operation.
type Recorder interface {
	Record(ctx context.Context, event repository.DomainEvent) error
}

type OutboxTaskCreator interface {
	CreateTx(ctx context.Context, tx db.Tx, task *repository.OutboxTask) error
}

// OutboxRecorder persists events into the Postgres outbox, from where
// the Publisher relays them to the broker.
type OutboxRecorder struct {
	db    db.DB
	repo  OutboxTaskCreator
	topic string
}

func NewOutboxRecorder(database db.DB, repo OutboxTaskCreator, topic string) *OutboxRecorder {
	return &OutboxRecorder{db: database, repo: repo, topic: topic}
}

func (r *OutboxRecorder) Record(ctx context.Context, event repository.DomainEvent) error {
	metrics.EventsRecordedTotal.Inc()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	task := &repository.OutboxTask{
		Payload: payload,
		Topic:   r.topic,
	}
	if err := r.repo.CreateTx(ctx, tx, task); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DirectRecorder sends events straight to the producer, skipping the
// outbox. Used when no database is configured; delivery guarantees are
// whatever the producer provides.
type DirectRecorder struct {
	producer Producer
	topic    string
	logger   *zap.Logger
}

func NewDirectRecorder(producer Producer, topic string, logger *zap.Logger) *DirectRecorder {
	return &DirectRecorder{producer: producer, topic: topic, logger: logger}
}

func (r *DirectRecorder) Record(ctx context.Context, event repository.DomainEvent) error {
	metrics.EventsRecordedTotal.Inc()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := r.producer.SendMessage(ctx, r.topic, []byte(event.EntityID), payload); err != nil {
		return fmt.Errorf("failed to send event: %w", err)
	}
	metrics.EventsPublishedTotal.Inc()
	return nil
}
