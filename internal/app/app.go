package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/marcosklein04/alquileres-ai/internal/adapter/postgres"
	contractrepo "github.com/marcosklein04/alquileres-ai/internal/adapter/postgres/contract"
	"github.com/marcosklein04/alquileres-ai/internal/adapter/provider/claude"
	"github.com/marcosklein04/alquileres-ai/internal/adapter/provider/resend"
	"github.com/marcosklein04/alquileres-ai/internal/config"
	contractsvc "github.com/marcosklein04/alquileres-ai/internal/service/contract"
	"github.com/marcosklein04/alquileres-ai/internal/service/notifier"
	"github.com/marcosklein04/alquileres-ai/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, wires services and handlers, and serves HTTP until the
// context is cancelled or a shutdown signal arrives.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("addr", cfg.Server.Addr()),
		slog.String("log_level", cfg.Log.Level),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	contracts := contractrepo.New(pool)
	extractor := claude.New(cfg.Extraction, logger)
	mailer := resend.New(cfg.Mailer, logger)

	contractService := contractsvc.NewService(logger, contracts, extractor, txm)
	notifierService := notifier.NewService(logger, contracts, mailer, cfg.Notifier)

	router, limiter := rest.NewRouter(rest.RouterDeps{
		Contracts:     rest.NewContractsHandler(contractService, logger),
		Notifications: rest.NewNotificationsHandler(notifierService, logger),
		Health:        rest.NewHealthHandler(pool, BuildVersion()),
		Logger:        logger,
		ServerCfg:     cfg.Server,
		CORSCfg:       cfg.CORS,
	})
	defer limiter.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("application stopped")
	return nil
}
