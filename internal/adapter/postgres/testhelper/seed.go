package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marcosklein04/alquileres-ai/internal/domain"
)

// ContractOption mutates a contract about to be seeded.
type ContractOption func(*domain.Contract)

// WithEndDate sets the end date relative to today (UTC midnight).
func WithEndDate(daysFromNow int) ContractOption {
	return func(c *domain.Contract) {
		now := time.Now().UTC()
		d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, daysFromNow)
		c.EndDate = &d
	}
}

// WithNoEndDate clears the end date.
func WithNoEndDate() ContractOption {
	return func(c *domain.Contract) { c.EndDate = nil }
}

// WithStatus sets the lifecycle status.
func WithStatus(s domain.ContractStatus) ContractOption {
	return func(c *domain.Contract) { c.Status = s }
}

// WithDecision sets the renewal decision.
func WithDecision(d domain.RenewalDecision) ContractOption {
	return func(c *domain.Contract) { c.RenewalDecision = d }
}

// WithEmails sets contact addresses; empty strings store NULL.
func WithEmails(tenant, owner string) ContractOption {
	return func(c *domain.Contract) {
		c.TenantEmail = nilIfEmpty(tenant)
		c.OwnerEmail = nilIfEmpty(owner)
	}
}

// WithNotified marks the contract's one-shot latch as already fired.
func WithNotified(at time.Time) ContractOption {
	return func(c *domain.Contract) {
		c.Notified60d = true
		at = at.UTC()
		c.NotifiedAt = &at
	}
}

// WithNoticeWindow sets the notice window in days.
func WithNoticeWindow(days int) ContractOption {
	return func(c *domain.Contract) { c.NoticeWindowDays = days }
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SeedContract inserts a contract with sensible defaults: active, pending
// decision, end date 30 days out, tenant email present, not notified.
// Options override the defaults. Returns the contract as stored.
func SeedContract(t *testing.T, pool *pgxpool.Pool, opts ...ContractOption) domain.Contract {
	t.Helper()
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 30)

	agency := "Inmobiliaria " + suffix
	tenant := "Tenant " + suffix
	owner := "Owner " + suffix
	tenantEmail := "tenant-" + suffix + "@example.com"

	c := domain.Contract{
		ID:               uuid.New(),
		Agency:           &agency,
		Tenant:           &tenant,
		Owner:            &owner,
		EndDate:          &end,
		NoticeWindowDays: domain.DefaultNoticeWindowDays,
		Status:           domain.ContractStatusActive,
		RenewalDecision:  domain.RenewalDecisionPending,
		TenantEmail:      &tenantEmail,
	}
	for _, opt := range opts {
		opt(&c)
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO contracts (id, agency, tenant, owner, start_date, end_date, notice_window_days,
		                        status, renewal_decision, tenant_email, owner_email, notified_60d, notified_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.Agency, c.Tenant, c.Owner, c.StartDate, c.EndDate, c.NoticeWindowDays,
		string(c.Status), string(c.RenewalDecision), c.TenantEmail, c.OwnerEmail, c.Notified60d, c.NotifiedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedContract insert: %v", err)
	}

	return c
}
