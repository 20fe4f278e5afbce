package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/rajmarketing/backend/internal/db"
	mock_database "github.com/rajmarketing/backend/internal/db/mocks"
	"github.com/rajmarketing/backend/internal/repository"
)

// fakeProducer captures sent messages.
type fakeProducer struct {
	mu       sync.Mutex
	messages []sentMessage
	sendErr  error
	closed   bool
}

type sentMessage struct {
	topic string
	key   []byte
	value []byte
}

func (p *fakeProducer) SendMessage(_ context.Context, topic string, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return p.sendErr
	}
	p.messages = append(p.messages, sentMessage{topic: topic, key: key, value: value})
	return nil
}

func (p *fakeProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// fakeCreator records outbox tasks handed to it.
type fakeCreator struct {
	tasks []*repository.OutboxTask
	err   error
}

func (c *fakeCreator) CreateTx(_ context.Context, _ db.Tx, task *repository.OutboxTask) error {
	if c.err != nil {
		return c.err
	}
	c.tasks = append(c.tasks, task)
	return nil
}

func TestOutboxRecorder(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	database := mock_database.NewMockDB(ctrl)
	tx := mock_database.NewMockTx(ctrl)
	creator := &fakeCreator{}

	database.EXPECT().BeginTx(ctx).Return(tx, nil)
	tx.EXPECT().Commit(ctx).Return(nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(errors.New("already committed")).AnyTimes()

	recorder := NewOutboxRecorder(database, creator, "domain_events")
	event := repository.DomainEvent{
		Action:     "order_created",
		EntityType: "order",
		EntityID:   "ORD-1",
	}
	require.NoError(t, recorder.Record(ctx, event))

	require.Len(t, creator.tasks, 1)
	task := creator.tasks[0]
	assert.Equal(t, "domain_events", task.Topic)

	var recorded repository.DomainEvent
	require.NoError(t, json.Unmarshal(task.Payload, &recorded))
	assert.Equal(t, "order_created", recorded.Action)
	assert.Equal(t, "ORD-1", recorded.EntityID)
	assert.False(t, recorded.Timestamp.IsZero(), "a missing timestamp is filled in")
}

func TestOutboxRecorderRollsBackOnCreateError(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	database := mock_database.NewMockDB(ctrl)
	tx := mock_database.NewMockTx(ctrl)
	creator := &fakeCreator{err: errors.New("insert failed")}

	database.EXPECT().BeginTx(ctx).Return(tx, nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	recorder := NewOutboxRecorder(database, creator, "domain_events")
	err := recorder.Record(ctx, repository.DomainEvent{Action: "order_created"})
	assert.EqualError(t, err, "insert failed")
}

func TestDirectRecorder(t *testing.T) {
	ctx := context.Background()
	producer := &fakeProducer{}
	recorder := NewDirectRecorder(producer, "domain_events", zap.NewNop())

	event := repository.DomainEvent{
		Timestamp:  time.Date(2024, 5, 15, 10, 30, 0, 0, time.UTC),
		Action:     "payment_created",
		EntityType: "payment",
		EntityID:   "PAY-1",
	}
	require.NoError(t, recorder.Record(ctx, event))

	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, "domain_events", msg.topic)
	assert.Equal(t, "PAY-1", string(msg.key), "messages are keyed by entity id")

	var sent repository.DomainEvent
	require.NoError(t, json.Unmarshal(msg.value, &sent))
	assert.Equal(t, event, sent)
}

func TestDirectRecorderSendError(t *testing.T) {
	producer := &fakeProducer{sendErr: errors.New("broker down")}
	recorder := NewDirectRecorder(producer, "domain_events", zap.NewNop())

	err := recorder.Record(context.Background(), repository.DomainEvent{Action: "order_created"})
	assert.ErrorContains(t, err, "broker down")
}
