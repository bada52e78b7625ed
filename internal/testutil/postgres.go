package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	dbschema "github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/db"
)

const (
	dbUser     = "invoice_user"
	dbPassword = "invoice_pass"
	dbName     = "invoices"
)

// StartPostgres launches a temporary Postgres container, applies the schema
// and returns a database handle. Teardown is registered with t.Cleanup.
func StartPostgres(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     dbUser,
			"POSTGRES_PASSWORD": dbPassword,
			"POSTGRES_DB":       dbName,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cleanupCancel()
		_ = container.Terminate(cleanupCtx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, host, mappedPort.Port(), dbName)

	db := connectAndMigrate(ctx, t, dsn)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func connectAndMigrate(ctx context.Context, t *testing.T, dsn string) *sql.DB {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for {
		conn, err := sql.Open("postgres", dsn)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err = conn.PingContext(pingCtx)
			cancel()
			if err == nil {
				if _, err = conn.ExecContext(ctx, dbschema.Schema); err == nil {
					return conn
				}
			}
			_ = conn.Close()
		}

		if time.Now().After(deadline) {
			t.Fatalf("timeout connecting to postgres: %v", err)
		}

		select {
		case <-ctx.Done():
			t.Fatalf("context cancelled connecting to postgres: %v", ctx.Err())
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// SeedCatalog inserts the customers and products the integration tests order
// against: customers 10 and 20, products 1 (4.50), 5 (9.999) and 7 (1.005).
func SeedCatalog(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO customers (customerId, customerName, customerAddress1, customerAddress2,
			customerCity, customerState, customerPostalCode, customerTelephone,
			customerContactName, customerEmailAddress)
		VALUES
			(10, 'Acme', '1 Main St', NULL, 'Springfield', 'IL', '62701', '555-0100', 'Pat Doe', 'pat@acme.test'),
			(20, 'Globex', '2 Elm St', 'Suite 5', 'Shelbyville', 'IL', '62565', NULL, NULL, NULL)`)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO products (productId, productName, productCost)
		VALUES (1, 'Widget', 4.50), (5, 'Gadget', 9.999), (7, 'Sprocket', 1.005)`)
	require.NoError(t, err)
}

// CountRows returns the row count of table.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM "+table).Scan(&n))
	return n
}
