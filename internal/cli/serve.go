package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/events"
	httpserver "github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/logger"
	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/order"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// orderPublisher is what serve needs from a publisher: publishing plus
// shutdown.
type orderPublisher interface {
	httpserver.OrderPublisher
	Close() error
}

func serve(parent context.Context, cfg *config.Config) error {
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Open(ctx, cfg.Database.DSN, dbOptions(cfg), log)
	if err != nil {
		return err
	}
	defer pool.Close()

	publisher, closeBroker, err := openPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer closeBroker()
	defer publisher.Close()

	router := httpserver.NewRouter(httpserver.Dependencies{
		Orders:         order.NewRepository(pool, log),
		Catalog:        catalog.NewRepository(pool),
		Publisher:      publisher,
		Logger:         log,
		APIKey:         cfg.Auth.APIKey,
		RequestTimeout: cfg.Server.RequestTimeout,
		AllowOrigins:   cfg.CORS.AllowOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("invoice-service listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server error", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// openPublisher dials the broker when one is configured. The returned func
// closes the broker connection.
func openPublisher(cfg *config.Config, log *slog.Logger) (orderPublisher, func(), error) {
	if cfg.Events.RabbitMQURL == "" {
		log.Info("no RABBITMQ_URL configured, order events disabled")
		return events.NopPublisher{}, func() {}, nil
	}

	conn, err := events.Dial(cfg.Events.RabbitMQURL)
	if err != nil {
		return nil, nil, err
	}
	publisher, err := events.NewPublisher(conn, cfg.Events.Exchange)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	log.Info("publishing order events", "exchange", cfg.Events.Exchange)
	return publisher, func() { _ = conn.Close() }, nil
}
