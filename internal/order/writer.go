package order

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/db"
)

const (
	insertOrderQuery = `INSERT INTO orders (orderDate, customerId)
         VALUES (now(), $1)
         RETURNING orderId, orderNumber, orderDate`

	insertLineItemQuery = `INSERT INTO orderLineItems (orderId, productId, quantity)
         VALUES ($1, $2, $3)`
)

// Writer creates orders. Each call runs on its own connection and transaction.
type Writer struct {
	provider db.Provider
	logger   *slog.Logger
}

func NewWriter(provider db.Provider, logger *slog.Logger) *Writer {
	return &Writer{provider: provider, logger: logger}
}

// Create inserts the order header and its line items atomically. Invalid input
// is rejected before a connection is acquired. Any failure after begin rolls
// the transaction back before the error is returned.
func (w *Writer) Create(ctx context.Context, o NewOrder) (created *Created, err error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	conn, err := w.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, &TransactionError{Step: "begin tx", Err: err}
	}
	defer func() {
		if err == nil {
			return
		}
		// database/sql already rolled back if ctx expired; ErrTxDone is expected then.
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			w.logger.ErrorContext(ctx, "rollback order tx failed", append(db.ErrorAttrs(rbErr), "cause", err.Error())...)
		}
	}()

	created = &Created{CustomerID: o.CustomerID, Items: o.Items}
	err = tx.QueryRowContext(ctx, insertOrderQuery, o.CustomerID).
		Scan(&created.OrderID, &created.OrderNumber, &created.OrderDate)
	if err != nil {
		return nil, &TransactionError{Step: "insert order", Err: err}
	}

	for _, it := range o.Items {
		if _, err = tx.ExecContext(ctx, insertLineItemQuery, created.OrderID, it.ProductID, it.Quantity); err != nil {
			return nil, &TransactionError{Step: "insert order line item", Err: err}
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, &TransactionError{Step: "commit", Err: err}
	}

	created.OrderDate = created.OrderDate.UTC()
	return created, nil
}
