package order

import (
	"context"
	"log/slog"

	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/db"
)

type Repository interface {
	Create(ctx context.Context, o NewOrder) (*Created, error)
	ListSummaries(ctx context.Context) ([]Summary, error)
	ListViews(ctx context.Context) ([]OrderView, error)
	GetView(ctx context.Context, invoiceNumber int64) (*OrderView, error)
}

// repo pairs the writer and reader. They share the provider but no state.
type repo struct {
	*Writer
	*Reader
}

func NewRepository(provider db.Provider, logger *slog.Logger) Repository {
	return &repo{
		Writer: NewWriter(provider, logger),
		Reader: NewReader(provider),
	}
}
