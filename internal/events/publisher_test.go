package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	mock_database "github.com/rajmarketing/backend/internal/db/mocks"
	"github.com/rajmarketing/backend/internal/repository"
	"github.com/rajmarketing/backend/internal/repository/postgresql"
)

func TestProcessBatchDelivers(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	database := mock_database.NewMockDB(ctrl)
	tx := mock_database.NewMockTx(ctrl)
	producer := &fakeProducer{}

	task := &repository.OutboxTask{
		ID:      uuid.New(),
		Status:  repository.TaskStatusCreated,
		Payload: []byte(`{"action":"order_created"}`),
		Topic:   "domain_events",
	}

	database.EXPECT().BeginTx(ctx).Return(tx, nil)
	tx.EXPECT().
		Select(ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
			*dest.(*[]*repository.OutboxTask) = []*repository.OutboxTask{task}
			return nil
		})
	tx.EXPECT().
		Exec(ctx, gomock.Any(), task.ID, repository.TaskStatusProcessing, 0, gomock.Nil(), gomock.Nil(), gomock.Any()).
		Return(pgconn.CommandTag("UPDATE 1"), nil)
	tx.EXPECT().Commit(ctx).Return(nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(errors.New("already committed")).AnyTimes()

	// Successful delivery marks the task completed with a timestamp.
	database.EXPECT().
		Exec(ctx, gomock.Any(), task.ID, repository.TaskStatusCompleted, 1, gomock.Nil(), gomock.Not(gomock.Nil()), gomock.Any()).
		Return(pgconn.CommandTag("UPDATE 1"), nil)

	p := NewPublisher(database, postgresql.NewOutboxTaskRepo(database), producer, PublisherConfig{}, zap.NewNop())
	require.NoError(t, p.processBatch(ctx))

	require.Len(t, producer.messages, 1)
	assert.Equal(t, "domain_events", producer.messages[0].topic)
	assert.Equal(t, task.ID.String(), string(producer.messages[0].key))
}

func TestProcessBatchMarksFailedDelivery(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	database := mock_database.NewMockDB(ctrl)
	tx := mock_database.NewMockTx(ctrl)
	producer := &fakeProducer{sendErr: errors.New("broker down")}

	task := &repository.OutboxTask{
		ID:       uuid.New(),
		Status:   repository.TaskStatusFailed,
		Attempts: 1,
		Topic:    "domain_events",
	}

	database.EXPECT().BeginTx(ctx).Return(tx, nil)
	tx.EXPECT().
		Select(ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
			*dest.(*[]*repository.OutboxTask) = []*repository.OutboxTask{task}
			return nil
		})
	tx.EXPECT().
		Exec(ctx, gomock.Any(), task.ID, repository.TaskStatusProcessing, 1, gomock.Nil(), gomock.Nil(), gomock.Any()).
		Return(pgconn.CommandTag("UPDATE 1"), nil)
	tx.EXPECT().Commit(ctx).Return(nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(errors.New("already committed")).AnyTimes()

	// The failed attempt is counted and the error message recorded.
	database.EXPECT().
		Exec(ctx, gomock.Any(), task.ID, repository.TaskStatusFailed, 2, gomock.Not(gomock.Nil()), gomock.Nil(), gomock.Any()).
		Return(pgconn.CommandTag("UPDATE 1"), nil)

	p := NewPublisher(database, postgresql.NewOutboxTaskRepo(database), producer, PublisherConfig{}, zap.NewNop())
	require.NoError(t, p.processBatch(ctx), "delivery failures are logged, not returned")
	assert.Empty(t, producer.messages)
}

func TestProcessBatchEmpty(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	database := mock_database.NewMockDB(ctrl)
	tx := mock_database.NewMockTx(ctrl)

	database.EXPECT().BeginTx(ctx).Return(tx, nil)
	tx.EXPECT().
		Select(ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)
	tx.EXPECT().Commit(ctx).Return(nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(errors.New("already committed")).AnyTimes()

	p := NewPublisher(database, postgresql.NewOutboxTaskRepo(database), nil, PublisherConfig{}, zap.NewNop())
	require.NoError(t, p.processBatch(ctx))
}
