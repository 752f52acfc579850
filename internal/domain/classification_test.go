package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassify_NoEndDate(t *testing.T) {
	t.Parallel()

	got := Classify(nil, date(2026, time.March, 1), 60)

	if got.Status != ExpirationNoEndDate {
		t.Errorf("status = %s, want %s", got.Status, ExpirationNoEndDate)
	}
	if got.DaysRemaining != nil {
		t.Errorf("daysRemaining = %v, want nil", *got.DaysRemaining)
	}
	if got.RequiresNotice {
		t.Error("requiresNotice should be false without an end date")
	}
}

func TestClassify_Boundaries(t *testing.T) {
	t.Parallel()

	today := date(2026, time.March, 1)
	window := 60

	tests := []struct {
		name           string
		end            time.Time
		wantDays       int
		wantStatus     ExpirationStatus
		wantNotice     bool
	}{
		{"expired yesterday", today.AddDate(0, 0, -1), -1, ExpirationExpired, false},
		{"expired five days ago", today.AddDate(0, 0, -5), -5, ExpirationExpired, false},
		{"due today", today, 0, ExpirationExpiring, true},
		{"mid window", today.AddDate(0, 0, 45), 45, ExpirationExpiring, true},
		{"last day of window", today.AddDate(0, 0, window), 60, ExpirationExpiring, true},
		{"just past window", today.AddDate(0, 0, window+1), 61, ExpirationActive, false},
		{"far future", today.AddDate(1, 0, 0), 365, ExpirationActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			end := tt.end
			got := Classify(&end, today, window)

			if got.DaysRemaining == nil {
				t.Fatal("daysRemaining is nil")
			}
			if *got.DaysRemaining != tt.wantDays {
				t.Errorf("daysRemaining = %d, want %d", *got.DaysRemaining, tt.wantDays)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", got.Status, tt.wantStatus)
			}
			if got.RequiresNotice != tt.wantNotice {
				t.Errorf("requiresNotice = %v, want %v", got.RequiresNotice, tt.wantNotice)
			}
		})
	}
}

func TestClassify_ZeroWindowFallsBackToDefault(t *testing.T) {
	t.Parallel()

	today := date(2026, time.March, 1)
	end := today.AddDate(0, 0, 45)

	got := Classify(&end, today, 0)

	if got.Status != ExpirationExpiring {
		t.Errorf("status = %s, want %s (45 days inside default 60-day window)", got.Status, ExpirationExpiring)
	}
	if !got.RequiresNotice {
		t.Error("requiresNotice should be true inside the default window")
	}
}

func TestClassify_IgnoresTimeOfDay(t *testing.T) {
	t.Parallel()

	// End date at midnight, "today" late in the evening: still a whole
	// calendar day apart.
	today := time.Date(2026, time.March, 1, 23, 30, 0, 0, time.UTC)
	end := date(2026, time.March, 2)

	got := Classify(&end, today, 60)

	if got.DaysRemaining == nil || *got.DaysRemaining != 1 {
		t.Fatalf("daysRemaining = %v, want 1", got.DaysRemaining)
	}
}
