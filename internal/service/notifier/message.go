package notifier

import (
	"fmt"
	"strings"

	"github.com/marcosklein04/alquileres-ai/internal/domain"
)

// composeMessage builds the deterministic notification subject and body
// for one contract. The same contract and classification always produce
// the same message.
func composeMessage(c domain.Contract, cls domain.Classification) (subject, body string) {
	days := 0
	if cls.DaysRemaining != nil {
		days = *cls.DaysRemaining
	}

	subject = fmt.Sprintf("Rental contract expiring in %d days", days)

	var b strings.Builder
	fmt.Fprintf(&b, "The rental contract below expires in %d days.\n\n", days)
	if c.EndDate != nil {
		fmt.Fprintf(&b, "End date: %s\n", domain.FormatDate(*c.EndDate))
	}
	if c.Tenant != nil {
		fmt.Fprintf(&b, "Tenant: %s\n", *c.Tenant)
	}
	if c.Owner != nil {
		fmt.Fprintf(&b, "Owner: %s\n", *c.Owner)
	}
	if c.Agency != nil {
		fmt.Fprintf(&b, "Agency: %s\n", *c.Agency)
	}
	fmt.Fprintf(&b, "Contract: %s\n", c.ID)
	b.WriteString("\nPlease record a renewal decision before the contract ends.\n")

	return subject, b.String()
}
