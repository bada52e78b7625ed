package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// ConnectivityError reports that the store is unreachable or rejected the
// credentials. It is fatal to the request that hit it.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("database %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// Provider hands out one connection per logical operation. The caller owns the
// returned connection and must Close it on every exit path.
type Provider interface {
	Acquire(ctx context.Context) (*sql.Conn, error)
}

// Options tunes the driver pool. Zero values keep the database/sql defaults.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Pool is the Provider backed by a *sql.DB.
type Pool struct {
	db     *sql.DB
	logger *slog.Logger
}

// openDB opens a database connection without pinging.
func openDB(dsn string) (*sql.DB, error) {
	return sql.Open("postgres", dsn)
}

// Open returns a verified pool. Both outcomes of the connect attempt are logged.
func Open(ctx context.Context, dsn string, opts Options, logger *slog.Logger) (*Pool, error) {
	database, err := openDB(dsn)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, &ConnectivityError{Op: "open", Err: err}
	}

	if opts.MaxOpenConns > 0 {
		database.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		database.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		database.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	p := NewPool(database, logger)
	if err := p.Ping(ctx); err != nil {
		_ = database.Close()
		return nil, err
	}
	logger.Info("connected to database")
	return p, nil
}

// NewPool wraps an already opened handle.
func NewPool(database *sql.DB, logger *slog.Logger) *Pool {
	return &Pool{db: database, logger: logger}
}

func (p *Pool) Acquire(ctx context.Context) (*sql.Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to acquire database connection", ErrorAttrs(err)...)
		return nil, &ConnectivityError{Op: "acquire", Err: err}
	}
	return conn, nil
}

func (p *Pool) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		p.logger.ErrorContext(ctx, "failed connection to database", ErrorAttrs(err)...)
		return &ConnectivityError{Op: "ping", Err: err}
	}
	return nil
}

func (p *Pool) Close() error {
	return p.db.Close()
}

// ErrorAttrs returns slog key/value pairs for err, adding the SQLSTATE and
// constraint when the error came from Postgres.
func ErrorAttrs(err error) []any {
	attrs := []any{"error", err}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		attrs = append(attrs, "sqlstate", string(pqErr.Code), "sql_error", pqErr.Code.Name())
		if pqErr.Constraint != "" {
			attrs = append(attrs, "constraint", pqErr.Constraint)
		}
	}
	return attrs
}
