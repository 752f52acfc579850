// Package notifier implements the expiration notification pass: a
// single synchronous sweep over notifiable contracts with a one-shot
// per-contract latch.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/marcosklein04/alquileres-ai/internal/config"
	"github.com/marcosklein04/alquileres-ai/internal/domain"
)

// Skip reasons reported in a PassReport.
const (
	SkipNoEndDate       = "no-end-date"
	SkipOutOfWindow     = "out-of-window"
	SkipDecisionMade    = "decision-already-made"
	SkipNoRecipients    = "no-recipients"
	skipSendErrorPrefix = "send-error:"
	skipLatchErrPrefix  = "latch-error:"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type contractRepo interface {
	ListActiveUnnotifiedWithEmail(ctx context.Context) ([]domain.Contract, error)
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}

type emailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ---------------------------------------------------------------------------
// Report
// ---------------------------------------------------------------------------

// Skip records one contract left out of a pass and why.
type Skip struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

// PassReport is the full accounting of one notification pass.
type PassReport struct {
	SentCount int         `json:"sentCount"`
	Sent      []uuid.UUID `json:"sent"`
	Skipped   []Skip      `json:"skipped"`
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service runs notification passes over the contract store.
type Service struct {
	log       *slog.Logger
	contracts contractRepo
	sender    emailSender
	cfg       config.NotifierConfig
	now       func() time.Time
}

// NewService creates a new Notifier service.
func NewService(logger *slog.Logger, contracts contractRepo, sender emailSender, cfg config.NotifierConfig) *Service {
	return &Service{
		log:       logger.With("service", "notifier"),
		contracts: contracts,
		sender:    sender,
		cfg:       cfg,
		now:       time.Now,
	}
}

// RunPass processes every notifiable contract once, in end-date order, and
// returns a full accounting. One contract's failure never aborts the rest;
// only a repository listing failure aborts the pass. The latch is written
// only after every recipient was reached, so a partial or failed send
// leaves the contract eligible for the next pass.
func (s *Service) RunPass(ctx context.Context) (PassReport, error) {
	contracts, err := s.contracts.ListActiveUnnotifiedWithEmail(ctx)
	if err != nil {
		return PassReport{}, fmt.Errorf("list notifiable contracts: %w", err)
	}

	report := PassReport{Sent: []uuid.UUID{}, Skipped: []Skip{}}
	today := s.now()

	s.log.InfoContext(ctx, "notification pass started", slog.Int("candidates", len(contracts)))

	for _, c := range contracts {
		if reason, skipped := s.process(ctx, c, today); skipped {
			report.Skipped = append(report.Skipped, Skip{ID: c.ID, Reason: reason})
			continue
		}
		report.Sent = append(report.Sent, c.ID)
		report.SentCount++
	}

	s.log.InfoContext(ctx, "notification pass finished",
		slog.Int("sent", report.SentCount),
		slog.Int("skipped", len(report.Skipped)),
	)

	return report, nil
}

// process handles one contract. It returns a non-empty reason when the
// contract was skipped rather than notified.
func (s *Service) process(ctx context.Context, c domain.Contract, today time.Time) (reason string, skipped bool) {
	window := c.NoticeWindowDays
	if window <= 0 {
		window = s.cfg.NoticeWindowDays
	}
	cls := domain.Classify(c.EndDate, today, window)

	// Re-checks of the selection filter keep the pass correct even when
	// the repository returns rows the filter should have excluded.
	if cls.Status == domain.ExpirationNoEndDate {
		return SkipNoEndDate, true
	}
	if !cls.RequiresNotice {
		return SkipOutOfWindow, true
	}
	if c.RenewalDecision != domain.RenewalDecisionPending {
		return SkipDecisionMade, true
	}

	recipients := c.Recipients()
	if len(recipients) == 0 {
		return SkipNoRecipients, true
	}

	subject, body := composeMessage(c, cls)

	for _, to := range recipients {
		if err := s.sender.Send(ctx, to, subject, body); err != nil {
			s.log.WarnContext(ctx, "send failed",
				slog.String("contract_id", c.ID.String()),
				slog.String("to", to),
				slog.String("error", err.Error()),
			)
			return skipSendErrorPrefix + err.Error(), true
		}
	}

	if err := s.contracts.MarkNotified(ctx, c.ID, s.now()); err != nil {
		// The emails are out; the latch write is the only thing that
		// failed. The next pass may re-send until the latch commits.
		s.log.ErrorContext(ctx, "latch write failed after successful send",
			slog.String("contract_id", c.ID.String()),
			slog.String("error", err.Error()),
		)
		return skipLatchErrPrefix + err.Error(), true
	}

	s.log.InfoContext(ctx, "contract notified",
		slog.String("contract_id", c.ID.String()),
		slog.Int("recipients", len(recipients)),
	)

	return "", false
}
