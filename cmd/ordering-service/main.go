package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/customer"
	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/dedup"
	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/product"
	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/sequence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- DB ---
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			return fmt.Errorf("db migrate: %w", err)
		}
	}

	customers := customer.NewPostgresRepository(pool)
	products := product.NewPostgresRepository(pool)
	orders := order.NewPostgresRepository(pool)

	opts := []order.Option{order.WithLogger(logger)}
	if cfg.GuardedStockUpdate {
		opts = append(opts, order.WithTransactor(db.NewTransactor(pool)))
	}

	// --- AMQP ---
	var conn *amqp.Connection
	if cfg.MessagingEnabled() {
		conn, err = amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn, sequence.NewRepository(pool))
		if err != nil {
			return fmt.Errorf("create publisher: %w", err)
		}
		defer pub.Close()
		opts = append(opts, order.WithPublisher(pub))
	} else {
		logger.Warn("RABBITMQ_URL not set, messaging disabled")
	}

	svc := order.NewService(customers, products, orders, opts...)

	if conn != nil {
		handler := events.CartCheckedOutHandler(svc, dedup.NewRepository(pool), logger)
		if err := events.StartCartCheckedOutConsumer(ctx, conn, handler, logger); err != nil {
			return fmt.Errorf("start consumer: %w", err)
		}
	}

	// --- HTTP ---
	h := httpapi.NewHandler(customers, products, svc, orders, logger, cfg.RequestTimeout)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(h, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal", "signal", sig.String())
	case err := <-errCh:
		runErr = fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	cancel()

	logger.Info("shutdown complete")
	return runErr
}
