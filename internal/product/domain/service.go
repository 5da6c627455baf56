package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrDuplicateName = errors.New("product name already exists")
	ErrInvalidAction = errors.New("invalid validation action")
)

// Violations is a validation failure listing every violated rule, not just
// the first.
type Violations struct {
	Rules []string
}

func (v *Violations) Error() string { return "validation failed" }

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Product, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Delete(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, req ListRequest) (*ListResult, error)
	Approved(ctx context.Context) ([]Product, error)
	Categories(ctx context.Context) (*CategorySummary, error)
	Search(ctx context.Context, query string) ([]Product, error)
	ApproveLegacy(ctx context.Context) (*ApproveLegacyResult, error)
	Revalidate(ctx context.Context, id string) (*Product, error)
	ValidationState(ctx context.Context, id string) (*ValidationState, error)
	OverrideValidation(ctx context.Context, id, action string) (*Product, error)
}

type CreateRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Stock       *int    `json:"stock"`
	ImageURL    string  `json:"imageUrl"`
}

type UpdateRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
	ImageURL    *string  `json:"imageUrl"`
}

type ListRequest struct {
	Category string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string
}

type ListResult struct {
	Products []Product
	Count    int
	Total    int
}

type CategoryStat struct {
	Name         string  `json:"name"`
	ProductCount int     `json:"productCount"`
	AveragePrice float64 `json:"averagePrice"`
}

type CategorySummary struct {
	Categories []string       `json:"categories"`
	Statistics []CategoryStat `json:"statistics"`
	Total      int            `json:"total"`
}

type ApproveLegacyResult struct {
	TotalProducts int `json:"totalProducts"`
	UpdatedCount  int `json:"updatedCount"`
}

type ValidationState struct {
	ID               string            `json:"id"`
	ValidationStatus Status            `json:"validationStatus"`
	ValidationResult *ValidationResult `json:"validationResult"`
}

// ValidationTrigger requests asynchronous validation of a product. Enqueue
// must not block the caller; it reports whether the request was accepted.
type ValidationTrigger interface {
	Enqueue(productID string) bool
}
