package domain

import (
	"github.com/freshmart/storefront/internal/storage"
)

// Status is a product's AI-validation lifecycle state.
type Status string

const (
	// StatusPending means validation has been requested but not finished.
	StatusPending Status = "pending"
	// StatusApproved means the listing passed validation and is sellable.
	StatusApproved Status = "approved"
	// StatusRejected means the listing failed validation.
	StatusRejected Status = "rejected"
	// StatusFailed means validation could not complete after retries.
	// Distinct from pending so stuck listings are visible to operators.
	StatusFailed Status = "validation_failed"
)

// ValidationResult is the outcome of scoring a listing's image and text.
type ValidationResult struct {
	Score            int      `json:"score"`
	Issues           []string `json:"issues"`
	ImageDescription string   `json:"imageDescription"`
	Reasoning        string   `json:"reasoning"`
}

type Product struct {
	storage.Meta
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Price            float64           `json:"price"`
	Category         string            `json:"category"`
	Stock            int               `json:"stock"`
	ImageURL         string            `json:"imageUrl"`
	ValidationStatus Status            `json:"validationStatus,omitempty"`
	ValidationResult *ValidationResult `json:"validationResult,omitempty"`
}
