package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopsphere/backend/internal/domain/ordering"
	"github.com/shopsphere/backend/internal/infrastructure/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db, mock
}

func newTestOrder() *ordering.Order {
	price := decimal.NewFromFloat(19.90)
	return ordering.NewOrder(uuid.New(), "ORD-20260301-0001", []ordering.OrderItem{
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: price, TotalPrice: price.Mul(decimal.NewFromInt(2))},
	})
}

func TestGormOrderRepository_Create_CommitsOrderAndOutboxTogether(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOrderRepository(db, event.NewOutboxEnqueuer())
	ctx := context.Background()

	order := newTestOrder()
	evt := ordering.NewOrderCreatedEvent(order)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "order_items"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "outbox_messages"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, order, evt)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_Create_RollsBackWhenOutboxInsertFails(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOrderRepository(db, event.NewOutboxEnqueuer())
	ctx := context.Background()

	order := newTestOrder()
	evt := ordering.NewOrderCreatedEvent(order)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "order_items"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "outbox_messages"`)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Create(ctx, order, evt)

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_Create_NoEvents(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOrderRepository(db, event.NewOutboxEnqueuer())
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "order_items"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(ctx, newTestOrder())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
