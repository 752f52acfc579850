// Package domain contains the core entities and business rules of the
// rental-contract tracker: the Contract entity, its lifecycle enums, and
// the expiration classifier.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultNoticeWindowDays is the notice window applied when a contract
// does not carry an explicit one.
const DefaultNoticeWindowDays = 60

// ContractStatus is the lifecycle flag of a contract. It is distinct from
// the computed expiration classification: an "active" contract may well be
// classified as expired.
type ContractStatus string

const (
	ContractStatusActive   ContractStatus = "active"
	ContractStatusInactive ContractStatus = "inactive"
)

func (s ContractStatus) String() string { return string(s) }

func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusActive, ContractStatusInactive:
		return true
	}
	return false
}

// RenewalDecision is the user-set renewal outcome. Once it leaves
// "pending" the contract is permanently excluded from notification.
type RenewalDecision string

const (
	RenewalDecisionPending    RenewalDecision = "pending"
	RenewalDecisionRenew      RenewalDecision = "renew"
	RenewalDecisionDoNotRenew RenewalDecision = "do-not-renew"
)

func (d RenewalDecision) String() string { return string(d) }

func (d RenewalDecision) IsValid() bool {
	switch d {
	case RenewalDecisionPending, RenewalDecisionRenew, RenewalDecisionDoNotRenew:
		return true
	}
	return false
}

// Contract is a rental agreement record. Contracts are created either
// from LLM extraction output or from a manual form; both paths converge
// on the same storage write. They are never deleted.
type Contract struct {
	ID               uuid.UUID
	Agency           *string
	Tenant           *string
	Owner            *string
	StartDate        *time.Time
	EndDate          *time.Time
	NoticeWindowDays int
	Status           ContractStatus
	RenewalDecision  RenewalDecision
	TenantEmail      *string
	OwnerEmail       *string
	Notified60d      bool
	NotifiedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NoticeWindow returns the contract's notice window, falling back to the
// default when the stored value is missing or nonsensical.
func (c Contract) NoticeWindow() int {
	if c.NoticeWindowDays <= 0 {
		return DefaultNoticeWindowDays
	}
	return c.NoticeWindowDays
}

// Recipients returns the contact addresses present on the contract, tenant
// first. An empty slice means the contract cannot be notified.
func (c Contract) Recipients() []string {
	var out []string
	if c.TenantEmail != nil && *c.TenantEmail != "" {
		out = append(out, *c.TenantEmail)
	}
	if c.OwnerEmail != nil && *c.OwnerEmail != "" {
		out = append(out, *c.OwnerEmail)
	}
	return out
}
