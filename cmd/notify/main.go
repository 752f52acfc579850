// Command notify runs a single renewal-notification pass and exits.
// It is intended to be invoked from cron or a scheduler; repeated
// invocations are idempotent once the per-contract latch commits.
// Overlapping invocations may double-send a contract whose latch has
// not committed yet.
//
// Exit codes: 0 = pass completed (even with per-contract skips), 1 = error.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/marcosklein04/alquileres-ai/internal/adapter/postgres"
	contractrepo "github.com/marcosklein04/alquileres-ai/internal/adapter/postgres/contract"
	"github.com/marcosklein04/alquileres-ai/internal/adapter/provider/resend"
	"github.com/marcosklein04/alquileres-ai/internal/config"
	"github.com/marcosklein04/alquileres-ai/internal/service/notifier"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	contracts := contractrepo.New(pool)
	mailer := resend.New(cfg.Mailer, logger)
	svc := notifier.NewService(logger, contracts, mailer, cfg.Notifier)

	report, err := svc.RunPass(ctx)
	if err != nil {
		logger.Error("notification pass failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("notification pass complete",
		slog.Int("sent", report.SentCount),
		slog.Int("skipped", len(report.Skipped)),
	)
	for _, s := range report.Skipped {
		logger.Info("skipped contract",
			slog.String("id", s.ID.String()),
			slog.String("reason", s.Reason),
		)
	}
}
