package notifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcosklein04/alquileres-ai/internal/config"
	"github.com/marcosklein04/alquileres-ai/internal/domain"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockContractRepo struct {
	ListFunc         func(ctx context.Context) ([]domain.Contract, error)
	MarkNotifiedFunc func(ctx context.Context, id uuid.UUID, at time.Time) error

	mu       sync.Mutex
	notified []uuid.UUID
}

func (m *mockContractRepo) ListActiveUnnotifiedWithEmail(ctx context.Context) ([]domain.Contract, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.Contract{}, nil
}

func (m *mockContractRepo) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	if m.MarkNotifiedFunc != nil {
		return m.MarkNotifiedFunc(ctx, id, at)
	}
	m.mu.Lock()
	m.notified = append(m.notified, id)
	m.mu.Unlock()
	return nil
}

func (m *mockContractRepo) notifiedIDs() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.notified...)
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type mockSender struct {
	SendFunc func(ctx context.Context, to, subject, body string) error

	mu   sync.Mutex
	sent []sentMail
}

func (m *mockSender) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body)
	}
	return nil
}

func (m *mockSender) sentMails() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

// ===========================================================================
// Helpers
// ===========================================================================

var fixedNow = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockContractRepo, sender *mockSender) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewService(logger, repo, sender, config.NotifierConfig{NoticeWindowDays: 60})
	s.now = func() time.Time { return fixedNow }
	return s
}

func strPtr(s string) *string { return &s }

// notifiable builds a contract that passes every dispatcher check:
// active, pending, unnotified, end date daysOut from the fixed clock,
// tenant email present.
func notifiable(daysOut int) domain.Contract {
	end := fixedNow.Truncate(24 * time.Hour).AddDate(0, 0, daysOut)
	email := "tenant@example.com"
	return domain.Contract{
		ID:               uuid.New(),
		Tenant:           strPtr("Maria Gomez"),
		Owner:            strPtr("Juan Perez"),
		EndDate:          &end,
		NoticeWindowDays: 60,
		Status:           domain.ContractStatusActive,
		RenewalDecision:  domain.RenewalDecisionPending,
		TenantEmail:      &email,
	}
}

func skipReason(t *testing.T, report PassReport, id uuid.UUID) string {
	t.Helper()
	for _, s := range report.Skipped {
		if s.ID == id {
			return s.Reason
		}
	}
	t.Fatalf("contract %s not in skipped list", id)
	return ""
}

// ===========================================================================
// RunPass
// ===========================================================================

func TestRunPass_SendsAndLatches(t *testing.T) {
	t.Parallel()

	c := notifiable(30)
	repo := &mockContractRepo{
		ListFunc: func(ctx context.Context) ([]domain.Contract, error) {
			return []domain.Contract{c}, nil
		},
		MarkNotifiedFunc: nil,
	}
	sender := &mockSender{}

	svc := newTestService(repo, sender)

	report, err := svc.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.SentCount)
	assert.Equal(t, []uuid.UUID{c.ID}, report.Sent)
	assert.Empty(t, report.Skipped)

	mails := sender.sentMails()
	require.Len(t, mails, 1)
	assert.Equal(t, "tenant@example.com", mails[0].To)
	assert.Contains(t, mails[0].Subject, "30 days")
	assert.Contains(t, mails[0].Body, "Maria Gomez")
	assert.Contains(t, mails[0].Body, c.ID.String())

	assert.Equal(t, []uuid.UUID{c.ID}, repo.notifiedIDs())
}

func TestRunPass_SendsToBothRecipientsSequentially(t *testing.T) {
	t.Parallel()

	c := notifiable(10)
	owner := "owner@example.com"
	c.OwnerEmail = &owner

	repo := &mockContractRepo{
		ListFunc: func(ctx context.Context) ([]domain.Contract, error) {
			return []domain.Contract{c}, nil
		},
	}
	sender := &mockSender{}

	svc := newTestService(repo, sender)

	report, err := svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.SentCount)

	mails := sender.sentMails()
	require.Len(t, mails, 2)
	assert.Equal(t, "tenant@example.com", mails[0].To)
	assert.Equal(t, "owner@example.com", mails[1].To)
	// Same deterministic message for both recipients.
	assert.Equal(t, mails[0].Body, mails[1].Body)
}

func TestRunPass_SkipReasons(t *testing.T) {
	t.Parallel()

	noEnd := notifiable(30)
	noEnd.EndDate = nil

	outOfWindow := notifiable(90)

	expired := notifiable(-5)

	decided := notifiable(30)
	decided.RenewalDecision = domain.RenewalDecisionRenew

	noRecipients := notifiable(30)
	noRecipients.TenantEmail = nil
	noRecipients.OwnerEmail = nil

	repo := &mockContractRepo{
		ListFunc: func(ctx context.Context) ([]domain.Contract, error) {
			return []domain.Contract{noEnd, outOfWindow, expired, decided, noRecipients}, nil
		},
	}
	sender := &mockSender{}

	svc := newTestService(repo, sender)

	report, err := svc.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.SentCount)
	assert.Empty(t, sender.sentMails())
	assert.Empty(t, repo.notifiedIDs())

	assert.Equal(t, SkipNoEndDate, skipReason(t, report, noEnd.ID))
	assert.Equal(t, SkipOutOfWindow, skipReason(t, report, outOfWindow.ID))
	assert.Equal(t, SkipOutOfWindow, skipReason(t, report, expired.ID))
	assert.Equal(t, SkipDecisionMade, skipReason(t, report, decided.ID))
	assert.Equal(t, SkipNoRecipients, skipReason(t, report, noRecipients.ID))
}

func TestRunPass_BoundaryDays(t *testing.T) {
	t.Parallel()

	dueToday := notifiable(0)
	lastDay := notifiable(60)
	justPast := notifiable(61)

	repo := &mockContractRepo{
		ListFunc: func(ctx context.Context) ([]domain.Contract, error) {
			return []domain.Contract{dueToday, lastDay, justPast}, nil
		},
	}
	sender := &mockSender{}

	svc := newTestService(repo, sender)

	report, err := svc.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.SentCount)
	assert.Contains(t, report.Sent, dueToday.ID)
	assert.Contains(t, report.Sent, lastDay.ID)
	assert.Equal(t, SkipOutOfWindow, skipReason(t, report, justPast.ID))
}

func TestRunPass_SendFailureDoesNotLatch(t *testing.T) {
	t.Parallel()

	c := notifiable(30)
	repo := &mockContractRepo{
		ListFunc: func(ctx context.Context) ([]domain.Contract, error) {
			return []domain.Contract{c}, nil
		},
	}
	sender := &mockSender{
		SendFunc: func(ctx context.Context, to, subject, body string) error {
			return errors.New("smtp unreachable")
		},
	}

	svc := newTestService(repo, sender)

	report, err := svc.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.SentCount)
	require.Len(t, report.Skipped, 1)
	assert.True(t, strings.HasPrefix(report.Skipped[0].Reason, "send-error:"))
	assert.Contains(t, report.Skipped[0].Reason, "smtp unreachable")
	assert.Empty(t, repo.notifiedIDs(), "latch must not be set on send failure")
}

func TestRunPass_PartialRecipientFailureSkipsWholeContract(t *testing.T) {
	t.Parallel()

	c := notifiable(30)
	owner := "owner@example.com"
	c.OwnerEmail = &owner

	repo := &mockContractRepo{
		ListFunc: func(ctx context.Context) ([]domain.Contract, error) {
			return []domain.Contract{c}, nil
		},
	}
	sender := &mockSender{
		SendFunc: func(ctx context.Context, to, subject, body string) error {
			if to == "owner@example.com" {
				return errors.New("mailbox full")
			}
			return nil
		},
	}

	svc := newTestService(repo, sender)

	report, err := svc.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.SentCount)
	require.Len(t, report.Skipped, 1)
	assert.True(t, strings.HasPrefix(report.Skipped[0].Reason, "send-error:"))
	assert.Empty(t, repo.notifiedIDs(), "all recipients must succeed before the latch is set")
}

func TestRunPass_FailureIsolation(t *testing.T) {
	t.Parallel()

	first := notifiable(10)
	failing := notifiable(20)
	third := notifiable(30)

	repo := &mockContractRepo{
		ListFunc: func(ctx context.Context) ([]domain.Contract, error) {
			return []domain.Contract{first, failing, third}, nil
		},
	}
	sender := &mockSender{
		SendFunc: func(ctx context.Context, to, subject, body string) error {
			if strings.Contains(body, failing.ID.String()) {
				return errors.New("provider outage")
			}
			return nil
		},
	}

	svc := newTestService(repo, sender)

	report, err := svc.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.SentCount)
	assert.Equal(t, []uuid.UUID{first.ID, third.ID}, report.Sent)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, failing.ID, report.Skipped[0].ID)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, third.ID}, repo.notifiedIDs())
}

func TestRunPass_Idempotent(t *testing.T) {
	t.Parallel()

	c := notifiable(30)
	latched := false
	repo := &mockContractRepo{
		ListFunc: func(ctx context.Context) ([]domain.Contract, error) {
			// The selection filter excludes latched contracts.
			if latched {
				return []domain.Contract{}, nil
			}
			return []domain.Contract{c}, nil
		},
		MarkNotifiedFunc: func(ctx context.Context, id uuid.UUID, at time.Time) error {
			latched = true
			return nil
		},
	}
	sender := &mockSender{}

	svc := newTestService(repo, sender)

	first, err := svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.SentCount)

	second, err := svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.SentCount)
	assert.Empty(t, second.Sent)
	require.Len(t, sender.sentMails(), 1, "latched contract must not be re-sent")
}

func TestRunPass_FailedContractRetriedNextPass(t *testing.T) {
	t.Parallel()

	c := notifiable(30)
	repo := &mockContractRepo{
		ListFunc: func(ctx context.Context) ([]domain.Contract, error) {
			return []domain.Contract{c}, nil
		},
	}
	attempts := 0
	sender := &mockSender{
		SendFunc: func(ctx context.Context, to, subject, body string) error {
			attempts++
			if attempts == 1 {
				return errors.New("transient failure")
			}
			return nil
		},
	}

	svc := newTestService(repo, sender)

	first, err := svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, first.SentCount)

	second, err := svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.SentCount)
	assert.Equal(t, []uuid.UUID{c.ID}, repo.notifiedIDs())
}

func TestRunPass_LatchErrorReported(t *testing.T) {
	t.Parallel()

	c := notifiable(30)
	repo := &mockContractRepo{
		ListFunc: func(ctx context.Context) ([]domain.Contract, error) {
			return []domain.Contract{c}, nil
		},
		MarkNotifiedFunc: func(ctx context.Context, id uuid.UUID, at time.Time) error {
			return errors.New("connection reset")
		},
	}
	sender := &mockSender{}

	svc := newTestService(repo, sender)

	report, err := svc.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.SentCount)
	require.Len(t, report.Skipped, 1)
	assert.True(t, strings.HasPrefix(report.Skipped[0].Reason, "latch-error:"))
	// The send itself did happen.
	require.Len(t, sender.sentMails(), 1)
}

func TestRunPass_ListErrorAbortsPass(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	repo := &mockContractRepo{
		ListFunc: func(ctx context.Context) ([]domain.Contract, error) {
			return nil, boom
		},
	}

	svc := newTestService(repo, &mockSender{})

	_, err := svc.RunPass(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRunPass_EmptySelection(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockContractRepo{}, &mockSender{})

	report, err := svc.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.SentCount)
	assert.NotNil(t, report.Sent)
	assert.NotNil(t, report.Skipped)
}

func TestRunPass_WindowFallbackFromConfig(t *testing.T) {
	t.Parallel()

	c := notifiable(45)
	c.NoticeWindowDays = 0 // unset on the contract, config default 60 applies

	repo := &mockContractRepo{
		ListFunc: func(ctx context.Context) ([]domain.Contract, error) {
			return []domain.Contract{c}, nil
		},
	}
	sender := &mockSender{}

	svc := newTestService(repo, sender)

	report, err := svc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.SentCount)
}

func TestComposeMessage_Deterministic(t *testing.T) {
	t.Parallel()

	c := notifiable(42)
	cls := domain.Classify(c.EndDate, fixedNow, c.NoticeWindow())

	subj1, body1 := composeMessage(c, cls)
	subj2, body2 := composeMessage(c, cls)

	assert.Equal(t, subj1, subj2)
	assert.Equal(t, body1, body2)
	assert.Contains(t, subj1, "42 days")
	assert.Contains(t, body1, "Maria Gomez")
	assert.Contains(t, body1, "Juan Perez")
	assert.Contains(t, body1, c.ID.String())
}
