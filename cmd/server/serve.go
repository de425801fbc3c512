package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/database"
	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/notify"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/router"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	notifier, err := notify.New(cfg, log.Named("notify"))
	if err != nil {
		return err
	}
	if c, ok := notifier.(io.Closer); ok {
		defer c.Close()
	}

	store := repository.NewStore(db, log.Named("store"))
	engine := booking.NewEngine(store, notifier, log.Named("booking"), booking.Config{
		CodePrefix:       cfg.Booking.CodePrefix,
		MaxProvisionDays: cfg.Booking.MaxProvisionDays,
		PaymentURLBase:   cfg.Booking.PaymentURLBase,
		NotifyTimeout:    cfg.Notify.Timeout,
	})

	opts := router.Options{
		JWTSecret: cfg.JWT.Secret,
		Cache:     cfg.Cache,
		RateLimit: cfg.RateLimit,
		Log:       log.Named("ratelimit"),
	}
	if cfg.Cache.Enabled || cfg.RateLimit.Enabled {
		opts.Redis = config.NewRedisClient(cfg.Redis)
		if opts.Redis == nil {
			log.Warn("redis unreachable, response cache and rate limit disabled",
				zap.String("addr", cfg.Redis.Address()))
		} else {
			defer opts.Redis.Close()
		}
	}

	catalog := handler.NewCatalogHandler(
		repository.NewLocationRepo(db),
		repository.NewCategoryRepo(db),
		repository.NewTimeSlotRepo(db),
		log,
	)

	e := router.New(log.Named("http"))
	router.RegisterRoutes(e, db)
	router.RegisterPublic(e, handler.NewBookingHandler(engine, log), catalog, opts)
	router.RegisterAdmin(e,
		handler.NewAdminReservationHandler(engine, log),
		handler.NewLedgerHandler(engine, log),
		catalog, opts)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.App.Port
	errCh := make(chan error, 1)
	go func() { errCh <- e.Start(addr) }()
	log.Info("listening", zap.String("addr", addr), zap.String("notify_driver", cfg.Notify.Driver))

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	// let notifications for already committed reservations go out
	engine.Drain()
	return nil
}
