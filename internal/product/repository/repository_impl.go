package repository

import (
	"context"

	"github.com/freshmart/storefront/internal/product/domain"
	"github.com/freshmart/storefront/internal/storage"
)

const collection = "products"

type repo struct {
	products *storage.Collection[domain.Product, *domain.Product]
}

func Provide(store *storage.Store) domain.Repository {
	return &repo{
		products: storage.NewCollection[domain.Product](store, collection),
	}
}

func (r *repo) All(ctx context.Context) ([]domain.Product, error) {
	return r.products.All(ctx)
}

func (r *repo) Get(ctx context.Context, id string) (domain.Product, bool, error) {
	return r.products.Get(ctx, id)
}

func (r *repo) Insert(ctx context.Context, product domain.Product) (domain.Product, error) {
	return r.products.Insert(ctx, product)
}

func (r *repo) Update(ctx context.Context, id string, mutate func(*domain.Product)) (domain.Product, error) {
	return r.products.Update(ctx, id, mutate)
}

func (r *repo) Delete(ctx context.Context, id string) (bool, error) {
	return r.products.Delete(ctx, id)
}

func (r *repo) Replace(ctx context.Context, products []domain.Product) error {
	return r.products.Replace(ctx, products, storage.WriteOptions{Backup: true})
}
