package contract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/marcosklein04/alquileres-ai/internal/domain"
)

// UpdateRenewalDecision records the renewal outcome for a contract.
// Only renew and do-not-renew are accepted: a decision, once made, is
// final and cannot be reset to pending. Deciding an already-decided
// contract returns domain.ErrConflict. The guarded repository write only
// touches a still-pending row, so concurrent callers cannot both decide;
// the write and the disambiguating re-read share one transaction.
func (s *Service) UpdateRenewalDecision(ctx context.Context, id uuid.UUID, decision domain.RenewalDecision) (domain.Contract, error) {
	if decision != domain.RenewalDecisionRenew && decision != domain.RenewalDecisionDoNotRenew {
		return domain.Contract{}, domain.NewValidationError("decision", "must be renew or do-not-renew")
	}

	var updated domain.Contract
	err := s.txm.RunInTx(ctx, func(ctx context.Context) error {
		u, err := s.contracts.UpdateRenewalDecision(ctx, id, decision)
		if err == nil {
			updated = u
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("update renewal decision: %w", err)
		}

		// No pending row matched: either the contract is missing or the
		// decision was already made.
		current, getErr := s.contracts.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		if current.RenewalDecision != domain.RenewalDecisionPending {
			return fmt.Errorf("decision already made: %w", domain.ErrConflict)
		}
		return fmt.Errorf("update renewal decision: %w", err)
	})
	if err != nil {
		return domain.Contract{}, err
	}

	s.log.InfoContext(ctx, "renewal decision recorded",
		slog.String("contract_id", id.String()),
		slog.String("decision", decision.String()),
	)

	return updated, nil
}

// UpdateStatus toggles the lifecycle status of a contract.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContractStatus) (domain.Contract, error) {
	if !status.IsValid() {
		return domain.Contract{}, domain.NewValidationError("status", "must be active or inactive")
	}

	updated, err := s.contracts.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.Contract{}, fmt.Errorf("update status: %w", err)
	}

	s.log.InfoContext(ctx, "contract status changed",
		slog.String("contract_id", id.String()),
		slog.String("status", status.String()),
	)

	return updated, nil
}
