package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/db"
)

// CustomerColumns lists customer columns in Customer.ScanDest order.
const CustomerColumns = `customerId, customerName, customerAddress1, customerAddress2,
         customerCity, customerState, customerPostalCode, customerTelephone,
         customerContactName, customerEmailAddress`

const (
	listCustomersQuery = `SELECT ` + CustomerColumns + `
         FROM customers ORDER BY customerId`

	listProductsQuery = `SELECT productId, productName, productCost
         FROM products ORDER BY productId`
)

type Repository interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	ListProducts(ctx context.Context) ([]Product, error)
}

type repo struct {
	provider db.Provider
}

func NewRepository(provider db.Provider) Repository {
	return &repo{provider: provider}
}

func (r *repo) ListCustomers(ctx context.Context) ([]Customer, error) {
	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, listCustomersQuery)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(c.ScanDest()...); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return customers, nil
}

func (r *repo) ListProducts(ctx context.Context) ([]Product, error) {
	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, listProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]Product, error) {
	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.ProductCost); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return products, nil
}
