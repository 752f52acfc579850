package contract

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/marcosklein04/alquileres-ai/internal/domain"
)

// Get returns a single contract with its classification.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (View, error) {
	c, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}

	return s.classify(c, nil), nil
}

// List returns contracts ordered by end date with their classification
// attached. A threshold overrides every contract's notice window for
// classification; only narrows the result to one expiration status.
func (s *Service) List(ctx context.Context, input ListInput) ([]View, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	contracts, err := s.contracts.List(ctx, domain.ContractFilter{
		Status: input.Status,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}

	views := make([]View, 0, len(contracts))
	for _, c := range contracts {
		v := s.classify(c, input.Threshold)
		if input.Only != nil && v.Classification.Status != *input.Only {
			continue
		}
		views = append(views, v)
	}

	return views, nil
}

// Alerts returns active, pending-decision contracts currently inside the
// expiring window. A positive threshold overrides per-contract windows.
func (s *Service) Alerts(ctx context.Context, threshold *int) ([]View, error) {
	if threshold != nil && *threshold <= 0 {
		return nil, domain.NewValidationError("threshold", "must be positive")
	}

	active := domain.ContractStatusActive
	pending := domain.RenewalDecisionPending
	contracts, err := s.contracts.List(ctx, domain.ContractFilter{
		Status:   &active,
		Decision: &pending,
	})
	if err != nil {
		return nil, fmt.Errorf("list contracts for alerts: %w", err)
	}

	views := make([]View, 0)
	for _, c := range contracts {
		v := s.classify(c, threshold)
		if v.Classification.Status != domain.ExpirationExpiring {
			continue
		}
		views = append(views, v)
	}

	return views, nil
}

// classify computes the classification for one contract, with an optional
// notice window override.
func (s *Service) classify(c domain.Contract, threshold *int) View {
	window := c.NoticeWindow()
	if threshold != nil {
		window = *threshold
	}

	return View{
		Contract:       c,
		Classification: domain.Classify(c.EndDate, s.now(), window),
	}
}
