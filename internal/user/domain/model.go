package domain

import (
	"context"
	"errors"

	"github.com/freshmart/storefront/internal/storage"
)

// Role controls what a user may administer.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	storage.Meta
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

var (
	ErrNotFound       = errors.New("user not found")
	ErrMissingFields  = errors.New("email and username are required")
	ErrDuplicateEmail = errors.New("user with this email already exists")
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*User, error)
	List(ctx context.Context) ([]User, error)
}

type CreateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

type Repository interface {
	All(ctx context.Context) ([]User, error)
	Insert(ctx context.Context, user User) (User, error)
}
