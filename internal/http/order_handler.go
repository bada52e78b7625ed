package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/order"
)

const (
	msgOrderCreated  = "Order created successfully"
	msgOrderNotFound = "Order not found"

	maxBodyBytes = 1 << 20
)

// OrderPublisher announces committed orders.
type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, c *order.Created, meta events.EnvelopeMetadata) error
}

type createResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"orderId"`
}

type OrderHandler struct {
	repo      order.Repository
	publisher OrderPublisher
	logger    *slog.Logger
	timeout   time.Duration
}

func NewOrderHandler(repo order.Repository, publisher OrderPublisher, logger *slog.Logger, timeout time.Duration) *OrderHandler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderHandler{repo: repo, publisher: publisher, logger: logger, timeout: timeout}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req order.CreateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.InfoContext(r.Context(), "rejected order payload", "reason", err.Error())
		writeText(w, http.StatusBadRequest, order.MsgInvalidInput)
		return
	}

	o, err := req.NewOrder()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	created, err := h.repo.Create(ctx, o)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "order created",
		"order_id", created.OrderID,
		"order_number", created.OrderNumber,
		"customer_id", created.CustomerID,
		"line_items", len(created.Items),
	)

	// The order is committed; a lost event must not fail the request.
	meta := events.EnvelopeMetadata{CorrelationID: middleware.GetReqID(r.Context())}
	if err := h.publisher.PublishOrderCreated(context.WithoutCancel(r.Context()), created, meta); err != nil {
		h.logger.WarnContext(r.Context(), "publish OrderCreated failed",
			"order_id", created.OrderID,
			"error", err,
		)
	}

	writeJSON(w, http.StatusCreated, createResponse{
		Message: msgOrderCreated,
		OrderID: created.OrderID,
	})
}

func (h *OrderHandler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	summaries, err := h.repo.ListSummaries(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *OrderHandler) ListDetails(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	views, err := h.repo.ListViews(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *OrderHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	invoiceNumber, err := strconv.ParseInt(chi.URLParam(r, "invoiceNumber"), 10, 64)
	if err != nil || invoiceNumber <= 0 {
		writeText(w, http.StatusNotFound, msgOrderNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.repo.GetView(ctx, invoiceNumber)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// writeError maps a repository error to its response. Store detail is
// logged and never written to the client.
func (h *OrderHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *order.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.logger.InfoContext(r.Context(), "rejected order payload", "reason", vErr.Reason)
		writeText(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, order.ErrNotFound):
		writeText(w, http.StatusNotFound, msgOrderNotFound)
	default:
		logStoreError(r.Context(), h.logger, r.URL.Path, err)
		writeText(w, http.StatusInternalServerError, msgInternalError)
	}
}

func logStoreError(ctx context.Context, logger *slog.Logger, path string, err error) {
	attrs := append([]any{"path", path}, db.ErrorAttrs(err)...)
	var txErr *order.TransactionError
	if errors.As(err, &txErr) {
		attrs = append(attrs, "step", txErr.Step)
	}
	logger.ErrorContext(ctx, "store operation failed", attrs...)
}
