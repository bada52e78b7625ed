//go:build integration

package integration

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startStore returns a seeded database and a pool over it.
func startStore(t *testing.T) (*sql.DB, *db.Pool) {
	t.Helper()

	database := testutil.StartPostgres(t)
	testutil.SeedCatalog(t, database)
	return database, db.NewPool(database, discardLogger())
}
