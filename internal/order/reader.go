package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/db"
)

const (
	listSummariesQuery = `SELECT orderNumber, orderDate, customerId
         FROM orders ORDER BY orderNumber`

	orderViewSelect = `SELECT
            o.orderId, o.orderNumber, o.orderDate,
            c.customerId, c.customerName, c.customerAddress1, c.customerAddress2,
            c.customerCity, c.customerState, c.customerPostalCode, c.customerTelephone,
            c.customerContactName, c.customerEmailAddress,
            oi.lineItemId, oi.quantity,
            p.productId, p.productName, p.productCost
         FROM orders o
         JOIN customers c ON o.customerId = c.customerId
         JOIN orderLineItems oi ON o.orderId = oi.orderId
         JOIN products p ON oi.productId = p.productId`

	listOrderViewsQuery = orderViewSelect + `
         ORDER BY o.orderNumber, oi.lineItemId`

	getOrderViewQuery = orderViewSelect + `
         WHERE o.orderNumber = $1
         ORDER BY oi.lineItemId`
)

// viewRow is one denormalized row of the order view join: a line item with its
// order header and customer repeated.
type viewRow struct {
	OrderID     int64
	OrderNumber int64
	OrderDate   time.Time
	Customer    catalog.Customer
	LineItemID  int64
	Quantity    int
	ProductID   int64
	ProductName string
	ProductCost decimal.Decimal
}

func (r *viewRow) scanDest() []any {
	dest := []any{&r.OrderID, &r.OrderNumber, &r.OrderDate}
	dest = append(dest, r.Customer.ScanDest()...)
	return append(dest,
		&r.LineItemID,
		&r.Quantity,
		&r.ProductID,
		&r.ProductName,
		&r.ProductCost,
	)
}

// Reader serves the order read models.
type Reader struct {
	provider db.Provider
}

func NewReader(provider db.Provider) *Reader {
	return &Reader{provider: provider}
}

// ListSummaries returns every order header ordered by order number.
func (r *Reader) ListSummaries(ctx context.Context) ([]Summary, error) {
	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, listSummariesQuery)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.OrderNumber, &s.OrderDate, &s.CustomerID); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		s.OrderDate = s.OrderDate.UTC()
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return summaries, nil
}

// ListViews returns one OrderView per order, in order number order.
func (r *Reader) ListViews(ctx context.Context) ([]OrderView, error) {
	rows, err := r.queryViewRows(ctx, listOrderViewsQuery)
	if err != nil {
		return nil, err
	}
	return foldViews(rows, byOrderID), nil
}

// GetView returns the OrderView for one invoice number, or ErrNotFound.
func (r *Reader) GetView(ctx context.Context, invoiceNumber int64) (*OrderView, error) {
	rows, err := r.queryViewRows(ctx, getOrderViewQuery, invoiceNumber)
	if err != nil {
		return nil, err
	}
	views := foldViews(rows, oneGroup)
	if len(views) == 0 {
		return nil, ErrNotFound
	}
	return &views[0], nil
}

func (r *Reader) queryViewRows(ctx context.Context, query string, args ...any) ([]viewRow, error) {
	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select order view: %w", err)
	}
	defer rows.Close()

	var out []viewRow
	for rows.Next() {
		var row viewRow
		if err := rows.Scan(row.scanDest()...); err != nil {
			return nil, fmt.Errorf("scan order view row: %w", err)
		}
		row.OrderDate = row.OrderDate.UTC()
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
