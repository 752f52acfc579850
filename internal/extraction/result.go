// Package extraction defines the typed boundary with the language-model
// extraction collaborator. The collaborator either returns fully-typed
// Fields or an error; all textual cleanup of the model response stays on
// the adapter side of this boundary.
package extraction

import "time"

// Fields is the structured data extracted from a free-text rental contract.
// Every field is optional: the model reports nil for anything it cannot
// identify with confidence.
type Fields struct {
	Agency    *string
	Tenant    *string
	Owner     *string
	StartDate *time.Time
	EndDate   *time.Time
	// Model records which model produced the extraction, for the API response.
	Model string
}

// Empty reports whether the extraction carries no usable field at all.
// An empty extraction must be rejected by the creation path.
func (f Fields) Empty() bool {
	return f.Agency == nil &&
		f.Tenant == nil &&
		f.Owner == nil &&
		f.StartDate == nil &&
		f.EndDate == nil
}
