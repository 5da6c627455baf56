package domain

import (
	"github.com/freshmart/storefront/internal/storage"
)

// Status is an order's fulfillment state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether s is a known fulfillment state.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// LineItem is one ordered product. Price is a snapshot captured at order
// creation, not a live reference into the catalog.
type LineItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Order struct {
	storage.Meta
	UserID      string     `json:"userId"`
	Products    []LineItem `json:"products"`
	TotalAmount float64    `json:"totalAmount"`
	Status      Status     `json:"status"`
}
