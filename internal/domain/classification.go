package domain

import "time"

// ExpirationStatus is the derived expiration classification of a contract.
// It is always recomputed from the current date and the stored end date,
// never persisted.
type ExpirationStatus string

const (
	ExpirationActive    ExpirationStatus = "active"
	ExpirationExpiring  ExpirationStatus = "expiring"
	ExpirationExpired   ExpirationStatus = "expired"
	ExpirationNoEndDate ExpirationStatus = "no-end-date"
)

func (s ExpirationStatus) String() string { return string(s) }

func (s ExpirationStatus) IsValid() bool {
	switch s {
	case ExpirationActive, ExpirationExpiring, ExpirationExpired, ExpirationNoEndDate:
		return true
	}
	return false
}

// Classification is the result of classifying a contract's end date
// against a reference date and a notice window.
type Classification struct {
	// DaysRemaining is the whole number of days until the end date
	// (negative once past). Nil when there is no end date.
	DaysRemaining *int
	Status        ExpirationStatus
	// RequiresNotice is true only in the expiring window,
	// 0 <= DaysRemaining <= noticeWindowDays, inclusive on both ends.
	RequiresNotice bool
}

// Classify computes the expiration classification for an end date.
// A nil end date yields no-end-date. A contract due today counts as
// expiring. noticeWindowDays <= 0 falls back to DefaultNoticeWindowDays.
func Classify(endDate *time.Time, today time.Time, noticeWindowDays int) Classification {
	if endDate == nil {
		return Classification{Status: ExpirationNoEndDate}
	}

	if noticeWindowDays <= 0 {
		noticeWindowDays = DefaultNoticeWindowDays
	}

	days := daysBetween(today, *endDate)

	switch {
	case days < 0:
		return Classification{DaysRemaining: &days, Status: ExpirationExpired}
	case days <= noticeWindowDays:
		return Classification{DaysRemaining: &days, Status: ExpirationExpiring, RequiresNotice: true}
	default:
		return Classification{DaysRemaining: &days, Status: ExpirationActive}
	}
}

// daysBetween returns the number of calendar days from a to b, ignoring
// the time-of-day and timezone components of both.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
