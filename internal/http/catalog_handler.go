package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/catalog"
)

type CatalogHandler struct {
	repo    catalog.Repository
	logger  *slog.Logger
	timeout time.Duration
}

func NewCatalogHandler(repo catalog.Repository, logger *slog.Logger, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{repo: repo, logger: logger, timeout: timeout}
}

func (h *CatalogHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	customers, err := h.repo.ListCustomers(ctx)
	if err != nil {
		logStoreError(r.Context(), h.logger, r.URL.Path, err)
		writeText(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.repo.ListProducts(ctx)
	if err != nil {
		logStoreError(r.Context(), h.logger, r.URL.Path, err)
		writeText(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	writeJSON(w, http.StatusOK, products)
}
