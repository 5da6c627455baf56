package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrNoProducts    = errors.New("order needs at least one product")
	ErrMissingUser   = errors.New("order user is required")
	ErrInvalidStatus = errors.New("invalid order status")
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Order, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// LineInput is a requested product/quantity pair. Any caller-supplied price
// is ignored; prices are snapshotted server-side from the current catalog.
type LineInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CreateRequest struct {
	UserID   string      `json:"userId"`
	Products []LineInput `json:"products"`
}

type UpdateRequest struct {
	Status *Status `json:"status"`
	UserID *string `json:"userId"`
}
