// Package contract implements the rental contract business logic:
// extraction-backed and manual creation, listings with expiration
// classification, and renewal bookkeeping.
package contract

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/marcosklein04/alquileres-ai/internal/domain"
	"github.com/marcosklein04/alquileres-ai/internal/extraction"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type contractRepo interface {
	Create(ctx context.Context, c domain.Contract) (domain.Contract, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Contract, error)
	List(ctx context.Context, f domain.ContractFilter) ([]domain.Contract, error)
	UpdateRenewalDecision(ctx context.Context, id uuid.UUID, decision domain.RenewalDecision) (domain.Contract, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContractStatus) (domain.Contract, error)
}

type fieldExtractor interface {
	Extract(ctx context.Context, text string) (extraction.Fields, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the contract business logic.
type Service struct {
	log       *slog.Logger
	contracts contractRepo
	extractor fieldExtractor
	txm       txManager
	now       func() time.Time
}

// NewService creates a new Contract service.
func NewService(logger *slog.Logger, contracts contractRepo, extractor fieldExtractor, txm txManager) *Service {
	return &Service{
		log:       logger.With("service", "contract"),
		contracts: contracts,
		extractor: extractor,
		txm:       txm,
		now:       time.Now,
	}
}
