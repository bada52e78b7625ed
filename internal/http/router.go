package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/order"
)

const (
	msgNotFound      = "Endpoint not found"
	msgInternalError = "Internal server error"
	msgHello         = "API Online & Available..."
)

// Dependencies is everything the router needs to serve requests.
type Dependencies struct {
	Orders         order.Repository
	Catalog        catalog.Repository
	Publisher      OrderPublisher
	Logger         *slog.Logger
	APIKey         string
	RequestTimeout time.Duration
	AllowOrigins   []string
}

func NewRouter(d Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", apiKeyHeader},
		MaxAge:         300,
	}))

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(notFoundHandler)

	r.Get("/health", healthHandler)
	r.Get("/api/public/hello", helloHandler)

	orders := NewOrderHandler(d.Orders, d.Publisher, d.Logger, d.RequestTimeout)
	cat := NewCatalogHandler(d.Catalog, d.Logger, d.RequestTimeout)

	r.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(d.APIKey))

		r.Get("/api/customer/viewall", cat.ListCustomers)
		r.Get("/api/product/viewall", cat.ListProducts)

		r.Post("/api/order/new", orders.Create)
		r.Get("/api/order/viewall", orders.ListSummaries)
		r.Get("/api/order/vieworderdetail", orders.ListDetails)
		r.Get("/api/order/details/{invoiceNumber}", orders.GetDetails)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "invoice-service",
	})
}

func helloHandler(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, msgHello)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusNotFound, msgNotFound)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeText writes a plain-text body. Every client-facing error uses it.
func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
