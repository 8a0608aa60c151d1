package event

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopsphere/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInboxMessage() *shared.InboxMessage {
	return &shared.InboxMessage{
		MessageID:      uuid.New(),
		ConsumerName:   "test-consumer",
		MessageType:    testEventType,
		ProcessedOnUTC: time.Now().UTC(),
	}
}

func TestGormInboxRepository_AlreadyProcessed(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormInboxRepository(db)
	ctx := context.Background()
	messageID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "inbox_messages" WHERE consumer_name = .* AND message_id = .*`).
		WithArgs("test-consumer", messageID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	processed, err := repo.AlreadyProcessed(ctx, "test-consumer", messageID)

	require.NoError(t, err)
	assert.True(t, processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInboxRepository_AlreadyProcessed_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormInboxRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "inbox_messages"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	processed, err := repo.AlreadyProcessed(ctx, "test-consumer", uuid.New())

	require.NoError(t, err)
	assert.False(t, processed)
}

func TestGormInboxRepository_Record(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormInboxRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "inbox_messages"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	err := repo.Record(ctx, newTestInboxMessage())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInboxRepository_Record_DuplicateKey(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormInboxRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "inbox_messages"`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_inbox_consumer_message"})

	err := repo.Record(ctx, newTestInboxMessage())

	require.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestGormInboxRepository_Record_OtherErrorsPassThrough(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormInboxRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "inbox_messages"`)).
		WillReturnError(&pq.Error{Code: "53300", Message: "too many connections"})

	err := repo.Record(ctx, newTestInboxMessage())

	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrAlreadyExists)
}
