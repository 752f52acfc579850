// Package contract implements the rental contract repository using PostgreSQL.
// Fixed-shape queries use raw SQL; the filtered listing is built with squirrel.
package contract

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/marcosklein04/alquileres-ai/internal/adapter/postgres"
	"github.com/marcosklein04/alquileres-ai/internal/domain"
)

// Repo provides contract persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new contract repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const contractColumns = `id, agency, tenant, owner, start_date, end_date, notice_window_days,
       status, renewal_decision, tenant_email, owner_email, notified_60d, notified_at,
       created_at, updated_at`

const createSQL = `
INSERT INTO contracts (id, agency, tenant, owner, start_date, end_date, notice_window_days,
                       status, renewal_decision, tenant_email, owner_email, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
RETURNING ` + contractColumns

const getByIDSQL = `
SELECT ` + contractColumns + `
FROM contracts
WHERE id = $1`

const listNotifiableSQL = `
SELECT ` + contractColumns + `
FROM contracts
WHERE status = 'active'
  AND NOT notified_60d
  AND end_date IS NOT NULL
  AND (tenant_email IS NOT NULL OR owner_email IS NOT NULL)
ORDER BY end_date ASC, id ASC`

const markNotifiedSQL = `
UPDATE contracts
SET notified_60d = TRUE, notified_at = $2, updated_at = $2
WHERE id = $1`

const updateDecisionSQL = `
UPDATE contracts
SET renewal_decision = $2, updated_at = $3
WHERE id = $1 AND renewal_decision = 'pending'
RETURNING ` + contractColumns

const updateStatusSQL = `
UPDATE contracts
SET status = $2, updated_at = $3
WHERE id = $1
RETURNING ` + contractColumns

// Create inserts a new contract and returns the persisted record.
func (r *Repo) Create(ctx context.Context, c domain.Contract) (domain.Contract, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Microsecond)

	row := querier.QueryRow(ctx, createSQL,
		c.ID, c.Agency, c.Tenant, c.Owner, c.StartDate, c.EndDate, c.NoticeWindowDays,
		string(c.Status), string(c.RenewalDecision), c.TenantEmail, c.OwnerEmail, now,
	)

	stored, err := scanContract(row)
	if err != nil {
		return domain.Contract{}, postgres.MapError(err, "contract", c.ID)
	}

	return stored, nil
}

// GetByID returns a contract by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Contract, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	c, err := scanContract(querier.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return domain.Contract{}, postgres.MapError(err, "contract", id)
	}

	return c, nil
}

const (
	defaultLimit = 100
	maxLimit     = 500
)

// normalizeFilter applies defaults and clamps pagination values.
func normalizeFilter(f domain.ContractFilter) domain.ContractFilter {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// List returns contracts matching the filter, ordered by end_date ASC
// (NULLS LAST) with id ASC as tie-breaker.
func (r *Repo) List(ctx context.Context, f domain.ContractFilter) ([]domain.Contract, error) {
	f = normalizeFilter(f)

	builder := sq.Select(contractColumns).
		From("contracts").
		OrderBy("end_date ASC NULLS LAST", "id ASC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		PlaceholderFormat(sq.Dollar)

	if f.Status != nil {
		builder = builder.Where(sq.Eq{"status": string(*f.Status)})
	}
	if f.Decision != nil {
		builder = builder.Where(sq.Eq{"renewal_decision": string(*f.Decision)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	contracts, err := scanContracts(rows)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}

	return contracts, nil
}

// ListActiveUnnotifiedWithEmail returns active contracts that have not yet
// been notified, have an end date and at least one contact email.
// Ordered by end_date ASC, id ASC for a stable dispatch order.
func (r *Repo) ListActiveUnnotifiedWithEmail(ctx context.Context) ([]domain.Contract, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listNotifiableSQL)
	if err != nil {
		return nil, fmt.Errorf("list notifiable contracts: %w", err)
	}
	defer rows.Close()

	contracts, err := scanContracts(rows)
	if err != nil {
		return nil, fmt.Errorf("list notifiable contracts: %w", err)
	}

	return contracts, nil
}

// MarkNotified sets the one-shot notification latch.
// Returns domain.ErrNotFound if the contract does not exist.
func (r *Repo) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, markNotifiedSQL, id, at.UTC())
	if err != nil {
		return postgres.MapError(err, "contract", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("contract %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// UpdateRenewalDecision sets the renewal decision on a still-pending
// contract and returns the updated record. The guard in the statement makes
// the decision one-shot even under concurrent callers: when no pending row
// matches (missing contract or decision already made) it returns
// domain.ErrNotFound and callers disambiguate with GetByID.
func (r *Repo) UpdateRenewalDecision(ctx context.Context, id uuid.UUID, decision domain.RenewalDecision) (domain.Contract, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	c, err := scanContract(querier.QueryRow(ctx, updateDecisionSQL, id, string(decision), now))
	if err != nil {
		return domain.Contract{}, postgres.MapError(err, "contract", id)
	}

	return c, nil
}

// UpdateStatus sets the lifecycle status and returns the updated contract.
// Returns domain.ErrNotFound if the contract does not exist.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContractStatus) (domain.Contract, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	c, err := scanContract(querier.QueryRow(ctx, updateStatusSQL, id, string(status), now))
	if err != nil {
		return domain.Contract{}, postgres.MapError(err, "contract", id)
	}

	return c, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

// scanContract scans a single contract row.
func scanContract(row pgx.Row) (domain.Contract, error) {
	var (
		c        domain.Contract
		status   string
		decision string
	)

	err := row.Scan(&c.ID, &c.Agency, &c.Tenant, &c.Owner, &c.StartDate, &c.EndDate,
		&c.NoticeWindowDays, &status, &decision, &c.TenantEmail, &c.OwnerEmail,
		&c.Notified60d, &c.NotifiedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Contract{}, err
	}

	c.Status = domain.ContractStatus(status)
	c.RenewalDecision = domain.RenewalDecision(decision)

	return c, nil
}

// scanContracts scans multiple rows into a domain.Contract slice.
func scanContracts(rows pgx.Rows) ([]domain.Contract, error) {
	var contracts []domain.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if contracts == nil {
		contracts = []domain.Contract{}
	}

	return contracts, nil
}
