package repository

import (
	"context"

	"github.com/freshmart/storefront/internal/storage"
	"github.com/freshmart/storefront/internal/user/domain"
)

const collection = "users"

type repo struct {
	users *storage.Collection[domain.User, *domain.User]
}

func Provide(store *storage.Store) domain.Repository {
	return &repo{
		users: storage.NewCollection[domain.User](store, collection),
	}
}

func (r *repo) All(ctx context.Context) ([]domain.User, error) {
	return r.users.All(ctx)
}

func (r *repo) Insert(ctx context.Context, user domain.User) (domain.User, error) {
	return r.users.Insert(ctx, user)
}
