package repository

import (
	"context"
	"encoding/json"

	"github.com/freshmart/storefront/internal/order/domain"
	"github.com/freshmart/storefront/internal/storage"
)

const collection = "orders"

type repo struct {
	orders *storage.Collection[domain.Order, *domain.Order]
}

func Provide(store *storage.Store) domain.Repository {
	return &repo{
		orders: storage.NewCollection[domain.Order](store, collection,
			storage.WithNormalize(unwrapLegacyEnvelope),
		),
	}
}

// unwrapLegacyEnvelope migrates the historical on-disk shape, a
// single-element array wrapping {"orders": [...]}, into the canonical plain
// record array. The next write persists the canonical shape.
func unwrapLegacyEnvelope(data []byte) ([]byte, bool) {
	var envelope []struct {
		ID     *string         `json:"id"`
		Orders json.RawMessage `json:"orders"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, false
	}
	if len(envelope) != 1 || envelope[0].Orders == nil || envelope[0].ID != nil {
		return nil, false
	}
	return envelope[0].Orders, true
}

func (r *repo) All(ctx context.Context) ([]domain.Order, error) {
	return r.orders.All(ctx)
}

func (r *repo) Get(ctx context.Context, id string) (domain.Order, bool, error) {
	return r.orders.Get(ctx, id)
}

func (r *repo) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	return r.orders.Insert(ctx, order)
}

func (r *repo) Update(ctx context.Context, id string, mutate func(*domain.Order)) (domain.Order, error) {
	return r.orders.Update(ctx, id, mutate)
}

func (r *repo) Delete(ctx context.Context, id string) (bool, error) {
	return r.orders.Delete(ctx, id)
}
