package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/bulk-auction/app/modules/auction"
	"github.com/Black-And-White-Club/bulk-auction/app/modules/auth"
	"github.com/Black-And-White-Club/bulk-auction/config"
	"github.com/Black-And-White-Club/bulk-auction/internal/eventbus"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	obs := observability.Init(observability.Config{
		ServiceName:    "bulk-auction",
		Environment:    cfg.Observability.Environment,
		LogLevel:       cfg.Observability.LogLevel,
		MetricsAddress: cfg.Observability.MetricsAddress,
	})
	logger := obs.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, obs); err != nil {
		logger.Error("Application exited with error", attr.Error(err))
		os.Exit(1)
	}
	logger.Info("Application shut down gracefully")
}

func run(ctx context.Context, cfg *config.Config, obs observability.Observability) error {
	logger := obs.Logger

	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	backend := eventbus.BackendNATS
	if cfg.NATS.URL == "" {
		backend = eventbus.BackendMemory
	}
	bus, err := eventbus.New(ctx, eventbus.Config{
		Backend:  backend,
		URL:      cfg.NATS.URL,
		NKeySeed: cfg.NATS.NKeySeed,
	}, logger)
	if err != nil {
		return err
	}
	defer bus.Close()

	router, err := eventbus.NewRouter(logger)
	if err != nil {
		return err
	}

	authModule := auth.NewModule(ctx, cfg, logger, obs.Tracer)

	auctionModule, err := auction.NewModule(ctx, cfg, obs, db, bus, router, authModule)
	if err != nil {
		return err
	}
	if err := auctionModule.Start(ctx); err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/readyz", readinessHandler(logger,
		readinessCheck{"postgres", db.PingContext},
		readinessCheck{"queue", auctionModule.Ready},
	))
	auctionModule.Mount(r)

	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 3)
	go func() {
		logger.Info("HTTP server listening", attr.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	go func() {
		if err := router.Run(ctx); err != nil {
			errc <- err
		}
	}()
	go func() {
		if err := obs.ServeMetrics(ctx, cfg.Observability.MetricsAddress); err != nil {
			errc <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errc:
		logger.Error("Component failed", attr.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", attr.Error(err))
	}
	if err := router.Close(); err != nil {
		logger.Error("Message router close failed", attr.Error(err))
	}
	if err := auctionModule.Close(shutdownCtx); err != nil {
		logger.Error("Auction module close failed", attr.Error(err))
	}

	return runErr
}
