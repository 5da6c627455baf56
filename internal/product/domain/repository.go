package domain

import "context"

type Repository interface {
	All(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, bool, error)
	Insert(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id string, mutate func(*Product)) (Product, error)
	Delete(ctx context.Context, id string) (bool, error)
	Replace(ctx context.Context, products []Product) error
}
