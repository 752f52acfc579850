package contract

import (
	"strings"

	"github.com/marcosklein04/alquileres-ai/internal/domain"
)

const maxContractTextLen = 100_000

// CreateFromTextInput holds the raw contract text for extraction-backed creation.
type CreateFromTextInput struct {
	Text string
}

// Validate checks all fields and collects all errors.
func (i *CreateFromTextInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.Text) == "" {
		errs = append(errs, domain.FieldError{Field: "text", Message: "required"})
	}
	if len(i.Text) > maxContractTextLen {
		errs = append(errs, domain.FieldError{Field: "text", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ManualInput holds the parameters for creating a contract by hand.
// Dates are accepted in several common layouts, see domain.ParseDate.
type ManualInput struct {
	Agency           *string
	Tenant           *string
	Owner            *string
	StartDate        *string
	EndDate          *string
	NoticeWindowDays *int
	TenantEmail      *string
	OwnerEmail       *string
}

// Validate checks all fields and collects all errors.
func (i *ManualInput) Validate() error {
	var errs []domain.FieldError

	if i.Agency == nil && i.Tenant == nil && i.Owner == nil &&
		i.StartDate == nil && i.EndDate == nil {
		errs = append(errs, domain.FieldError{Field: "contract", Message: "at least one field required"})
	}
	if i.StartDate != nil {
		if _, ok := domain.ParseDate(*i.StartDate); !ok {
			errs = append(errs, domain.FieldError{Field: "start_date", Message: "unrecognized date"})
		}
	}
	if i.EndDate != nil {
		if _, ok := domain.ParseDate(*i.EndDate); !ok {
			errs = append(errs, domain.FieldError{Field: "end_date", Message: "unrecognized date"})
		}
	}
	if i.NoticeWindowDays != nil && *i.NoticeWindowDays <= 0 {
		errs = append(errs, domain.FieldError{Field: "notice_window_days", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ListInput holds the parameters for the classified contract listing.
type ListInput struct {
	// Threshold overrides every contract's own notice window for
	// classification purposes. nil keeps per-contract windows.
	Threshold *int

	// Only keeps contracts whose computed expiration status matches.
	Only *domain.ExpirationStatus

	// Status filters by lifecycle status before classification.
	Status *domain.ContractStatus

	Limit  int
	Offset int
}

// Validate checks all fields and collects all errors.
func (i *ListInput) Validate() error {
	var errs []domain.FieldError

	if i.Threshold != nil && *i.Threshold <= 0 {
		errs = append(errs, domain.FieldError{Field: "threshold", Message: "must be positive"})
	}
	if i.Only != nil && !i.Only.IsValid() {
		errs = append(errs, domain.FieldError{Field: "only", Message: "unknown status"})
	}
	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "unknown status"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
