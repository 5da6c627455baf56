package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshmart/storefront/internal/clock"
	"github.com/freshmart/storefront/internal/order/domain"
	"github.com/freshmart/storefront/internal/order/repository"
	productdomain "github.com/freshmart/storefront/internal/product/domain"
	productrepository "github.com/freshmart/storefront/internal/product/repository"
	"github.com/freshmart/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, productdomain.Repository, *storage.Store) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	store, err := storage.New(t.TempDir(), storage.Params{
		Log:   zap.NewNop(),
		GenID: node,
		Clk:   clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	products := productrepository.Provide(store)
	svc := New(Params{Log: zap.NewNop(), Repo: repository.Provide(store), Products: products})
	return svc, products, store
}

func seedProduct(t *testing.T, products productdomain.Repository, name string, price float64) productdomain.Product {
	t.Helper()
	created, err := products.Insert(context.Background(), productdomain.Product{
		Name:             name,
		Description:      "a test product",
		Price:            price,
		Category:         "Fruits",
		Stock:            10,
		ValidationStatus: productdomain.StatusApproved,
	})
	require.NoError(t, err)
	return created
}

func TestCreateComputesTotalFromCatalogPrices(t *testing.T) {
	svc, products, _ := newTestService(t)
	ctx := context.Background()

	apple := seedProduct(t, products, "Apple", 3.99)
	banana := seedProduct(t, products, "Banana", 2.49)

	order, err := svc.Create(ctx, domain.CreateRequest{
		UserID: "user_001",
		Products: []domain.LineInput{
			{ProductID: apple.ID, Quantity: 2},
			{ProductID: banana.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 10.47, order.TotalAmount)
	assert.Equal(t, domain.StatusPending, order.Status)
	require.Len(t, order.Products, 2)
	assert.Equal(t, 3.99, order.Products[0].Price)
	assert.Equal(t, 2.49, order.Products[1].Price)
}

func TestCreateSnapshotsPricesAtOrderTime(t *testing.T) {
	svc, products, _ := newTestService(t)
	ctx := context.Background()

	apple := seedProduct(t, products, "Apple", 3.99)

	order, err := svc.Create(ctx, domain.CreateRequest{
		UserID:   "user_001",
		Products: []domain.LineInput{{ProductID: apple.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// Raising the catalog price does not change the stored order.
	_, err = products.Update(ctx, apple.ID, func(p *productdomain.Product) { p.Price = 9.99 })
	require.NoError(t, err)

	refreshed, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.99, refreshed.Products[0].Price)
	assert.Equal(t, 3.99, refreshed.TotalAmount)
}

func TestCreateUnknownProductSnapshotsPriceZero(t *testing.T) {
	svc, products, _ := newTestService(t)
	ctx := context.Background()

	apple := seedProduct(t, products, "Apple", 3.99)

	order, err := svc.Create(ctx, domain.CreateRequest{
		UserID: "user_001",
		Products: []domain.LineInput{
			{ProductID: apple.ID, Quantity: 1},
			{ProductID: "ghost", Quantity: 4},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3.99, order.TotalAmount)
	assert.Equal(t, 0.0, order.Products[1].Price)
}

func TestCreateDefaultsQuantityToOne(t *testing.T) {
	svc, products, _ := newTestService(t)

	apple := seedProduct(t, products, "Apple", 3.99)

	order, err := svc.Create(context.Background(), domain.CreateRequest{
		UserID:   "user_001",
		Products: []domain.LineInput{{ProductID: apple.ID}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, order.Products[0].Quantity)
}

func TestCreateRejectsEmptyOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{UserID: "user_001"})
	assert.ErrorIs(t, err, domain.ErrNoProducts)

	_, err = svc.Create(ctx, domain.CreateRequest{
		Products: []domain.LineInput{{ProductID: "p", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrMissingUser)
}

func TestUpdateValidatesStatus(t *testing.T) {
	svc, products, _ := newTestService(t)
	ctx := context.Background()

	apple := seedProduct(t, products, "Apple", 3.99)
	order, err := svc.Create(ctx, domain.CreateRequest{
		UserID:   "user_001",
		Products: []domain.LineInput{{ProductID: apple.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	bogus := domain.Status("teleported")
	_, err = svc.Update(ctx, order.ID, domain.UpdateRequest{Status: &bogus})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	shipped := domain.StatusShipped
	updated, err := svc.Update(ctx, order.ID, domain.UpdateRequest{Status: &shipped})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, updated.Status)

	_, err = svc.Update(ctx, "missing", domain.UpdateRequest{Status: &shipped})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMigratesLegacyEnvelopeShape(t *testing.T) {
	svc, _, store := newTestService(t)

	legacy := `[{"orders":[{"id":"order-1","userId":"user_001","products":[{"productId":"p1","quantity":2,"price":1.5}],"totalAmount":3,"status":"pending","createdAt":"2025-06-01T00:00:00Z","updatedAt":"2025-06-01T00:00:00Z"}]}]`
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "orders.json"), []byte(legacy), 0o644))

	orders, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "order-1", orders[0].ID)
	assert.Equal(t, 3.0, orders[0].TotalAmount)
}

func TestDeleteReportsRemoval(t *testing.T) {
	svc, products, _ := newTestService(t)
	ctx := context.Background()

	apple := seedProduct(t, products, "Apple", 3.99)
	order, err := svc.Create(ctx, domain.CreateRequest{
		UserID:   "user_001",
		Products: []domain.LineInput{{ProductID: apple.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = svc.Get(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
