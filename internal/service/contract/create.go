package contract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcosklein04/alquileres-ai/internal/domain"
)

// CreateFromText extracts structured fields from raw contract text and
// persists a new contract. An extraction that yields no usable field is
// rejected with domain.ErrExtractionFailed; no empty record is ever stored.
func (s *Service) CreateFromText(ctx context.Context, input CreateFromTextInput) (CreateResult, error) {
	if err := input.Validate(); err != nil {
		return CreateResult{}, err
	}

	fields, err := s.extractor.Extract(ctx, input.Text)
	if err != nil {
		return CreateResult{}, fmt.Errorf("extract contract fields: %w", err)
	}
	if fields.Empty() {
		return CreateResult{}, fmt.Errorf("no usable fields in contract text: %w", domain.ErrExtractionFailed)
	}

	created, err := s.contracts.Create(ctx, domain.Contract{
		Agency:           fields.Agency,
		Tenant:           fields.Tenant,
		Owner:            fields.Owner,
		StartDate:        fields.StartDate,
		EndDate:          fields.EndDate,
		NoticeWindowDays: domain.DefaultNoticeWindowDays,
		Status:           domain.ContractStatusActive,
		RenewalDecision:  domain.RenewalDecisionPending,
	})
	if err != nil {
		return CreateResult{}, fmt.Errorf("create contract: %w", err)
	}

	s.log.InfoContext(ctx, "contract created from text",
		slog.String("contract_id", created.ID.String()),
		slog.String("model", fields.Model),
	)

	return CreateResult{Contract: created, Model: fields.Model}, nil
}

// CreateManual persists a contract from hand-entered fields.
func (s *Service) CreateManual(ctx context.Context, input ManualInput) (domain.Contract, error) {
	if err := input.Validate(); err != nil {
		return domain.Contract{}, err
	}

	window := domain.DefaultNoticeWindowDays
	if input.NoticeWindowDays != nil {
		window = *input.NoticeWindowDays
	}

	created, err := s.contracts.Create(ctx, domain.Contract{
		Agency:           input.Agency,
		Tenant:           input.Tenant,
		Owner:            input.Owner,
		StartDate:        parseDate(input.StartDate),
		EndDate:          parseDate(input.EndDate),
		NoticeWindowDays: window,
		Status:           domain.ContractStatusActive,
		RenewalDecision:  domain.RenewalDecisionPending,
		TenantEmail:      input.TenantEmail,
		OwnerEmail:       input.OwnerEmail,
	})
	if err != nil {
		return domain.Contract{}, fmt.Errorf("create contract: %w", err)
	}

	s.log.InfoContext(ctx, "contract created manually",
		slog.String("contract_id", created.ID.String()),
	)

	return created, nil
}

// parseDate converts an already-validated date string. Inputs that fail
// validation never reach this point, so unparseable values map to nil.
func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, ok := domain.ParseDate(*s)
	if !ok {
		return nil
	}
	return &t
}
