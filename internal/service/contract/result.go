package contract

import "github.com/marcosklein04/alquileres-ai/internal/domain"

// View pairs a stored contract with its computed expiration classification.
type View struct {
	Contract       domain.Contract
	Classification domain.Classification
}

// CreateResult is the outcome of an extraction-backed creation.
type CreateResult struct {
	Contract domain.Contract
	// Model names the language model that produced the extracted fields.
	// Empty for manual creation.
	Model string
}
