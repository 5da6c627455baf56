package domain

import "context"

type Repository interface {
	All(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (Order, bool, error)
	Insert(ctx context.Context, order Order) (Order, error)
	Update(ctx context.Context, id string, mutate func(*Order)) (Order, error)
	Delete(ctx context.Context, id string) (bool, error)
}
