package order

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/db"
)

// countingProvider records Acquire calls and delegates to an optional pool.
type countingProvider struct {
	pool  db.Provider
	err   error
	calls int
}

func (p *countingProvider) Acquire(ctx context.Context) (*sql.Conn, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.pool.Acquire(ctx)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockProvider(t *testing.T) (*countingProvider, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return &countingProvider{pool: db.NewPool(sqlDB, discardLogger())}, mock
}

func orderRow(orderID, orderNumber int64, at time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"orderid", "ordernumber", "orderdate"}).
		AddRow(orderID, orderNumber, at)
}

func TestWriterCreate_Success(t *testing.T) {
	provider, mock := newMockProvider(t)
	w := NewWriter(provider, discardLogger())
	at := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

	o := NewOrder{
		CustomerID: 10,
		Items: []NewLineItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 5, Quantity: 1},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertOrderQuery)).
		WithArgs(int64(10)).
		WillReturnRows(orderRow(42, 100001, at))
	mock.ExpectExec(regexp.QuoteMeta(insertLineItemQuery)).
		WithArgs(int64(42), int64(1), 2).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertLineItemQuery)).
		WithArgs(int64(42), int64(5), 1).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	created, err := w.Create(context.Background(), o)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, int64(42), created.OrderID)
	assert.Equal(t, int64(100001), created.OrderNumber)
	assert.Equal(t, int64(10), created.CustomerID)
	assert.True(t, at.Equal(created.OrderDate))
	assert.Equal(t, o.Items, created.Items)
	assert.Equal(t, 1, provider.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriterCreate_InvalidInputNeverTouchesStore(t *testing.T) {
	tests := map[string]struct {
		order   NewOrder
		message string
	}{
		"missing customer": {
			order:   NewOrder{Items: []NewLineItem{{ProductID: 1, Quantity: 1}}},
			message: MsgInvalidInput,
		},
		"no items": {
			order:   NewOrder{CustomerID: 10},
			message: MsgInvalidInput,
		},
		"missing product": {
			order:   NewOrder{CustomerID: 10, Items: []NewLineItem{{Quantity: 1}}},
			message: MsgInvalidProduct,
		},
		"zero quantity": {
			order:   NewOrder{CustomerID: 10, Items: []NewLineItem{{ProductID: 1, Quantity: 0}}},
			message: MsgInvalidProduct,
		},
		"negative quantity": {
			order:   NewOrder{CustomerID: 10, Items: []NewLineItem{{ProductID: 1, Quantity: -3}}},
			message: MsgInvalidProduct,
		},
		"duplicate product": {
			order: NewOrder{CustomerID: 10, Items: []NewLineItem{
				{ProductID: 1, Quantity: 1},
				{ProductID: 1, Quantity: 2},
			}},
			message: MsgInvalidProduct,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			provider := &countingProvider{err: errors.New("must not be called")}
			w := NewWriter(provider, discardLogger())

			created, err := w.Create(context.Background(), tt.order)
			require.Error(t, err)
			assert.Nil(t, created)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.message, vErr.Message)
			assert.Zero(t, provider.calls)
		})
	}
}

func TestWriterCreate_AcquireError(t *testing.T) {
	connErr := &db.ConnectivityError{Op: "acquire", Err: errors.New("connection refused")}
	w := NewWriter(&countingProvider{err: connErr}, discardLogger())

	_, err := w.Create(context.Background(), NewOrder{
		CustomerID: 10,
		Items:      []NewLineItem{{ProductID: 1, Quantity: 1}},
	})

	var got *db.ConnectivityError
	require.ErrorAs(t, err, &got)
}

func TestWriterCreate_BeginError(t *testing.T) {
	provider, mock := newMockProvider(t)
	w := NewWriter(provider, discardLogger())

	mock.ExpectBegin().WillReturnError(errors.New("begin failed"))

	_, err := w.Create(context.Background(), NewOrder{
		CustomerID: 10,
		Items:      []NewLineItem{{ProductID: 1, Quantity: 1}},
	})

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "begin tx", txErr.Step)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriterCreate_OrderInsertErrorRollsBack(t *testing.T) {
	provider, mock := newMockProvider(t)
	w := NewWriter(provider, discardLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertOrderQuery)).
		WithArgs(int64(10)).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	created, err := w.Create(context.Background(), NewOrder{
		CustomerID: 10,
		Items:      []NewLineItem{{ProductID: 1, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Nil(t, created)

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "insert order", txErr.Step)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriterCreate_LineItemInsertErrorRollsBack(t *testing.T) {
	provider, mock := newMockProvider(t)
	w := NewWriter(provider, discardLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertOrderQuery)).
		WithArgs(int64(10)).
		WillReturnRows(orderRow(7, 100007, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(insertLineItemQuery)).
		WithArgs(int64(7), int64(1), 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertLineItemQuery)).
		WithArgs(int64(7), int64(99), 4).
		WillReturnError(errors.New("violates foreign key constraint"))
	mock.ExpectRollback()

	_, err := w.Create(context.Background(), NewOrder{
		CustomerID: 10,
		Items: []NewLineItem{
			{ProductID: 1, Quantity: 1},
			{ProductID: 99, Quantity: 4},
		},
	})

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "insert order line item", txErr.Step)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriterCreate_CommitError(t *testing.T) {
	provider, mock := newMockProvider(t)
	w := NewWriter(provider, discardLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertOrderQuery)).
		WithArgs(int64(10)).
		WillReturnRows(orderRow(8, 100008, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(insertLineItemQuery)).
		WithArgs(int64(8), int64(1), 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	_, err := w.Create(context.Background(), NewOrder{
		CustomerID: 10,
		Items:      []NewLineItem{{ProductID: 1, Quantity: 1}},
	})

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "commit", txErr.Step)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriterCreate_RollbackFailureKeepsInsertError(t *testing.T) {
	provider, mock := newMockProvider(t)

	var logs bytes.Buffer
	w := NewWriter(provider, slog.New(slog.NewJSONHandler(&logs, nil)))

	insertErr := errors.New("insert failed")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertOrderQuery)).
		WithArgs(int64(10)).
		WillReturnError(insertErr)
	mock.ExpectRollback().WillReturnError(errors.New("connection reset"))

	_, err := w.Create(context.Background(), NewOrder{
		CustomerID: 10,
		Items:      []NewLineItem{{ProductID: 1, Quantity: 1}},
	})

	require.ErrorIs(t, err, insertErr)
	assert.Contains(t, logs.String(), "rollback order tx failed")
	assert.Contains(t, logs.String(), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}
