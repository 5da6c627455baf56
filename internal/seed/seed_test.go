package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/freshmart/storefront/internal/clock"
	productdomain "github.com/freshmart/storefront/internal/product/domain"
	productrepo "github.com/freshmart/storefront/internal/product/repository"
	"github.com/freshmart/storefront/internal/storage"
	userdomain "github.com/freshmart/storefront/internal/user/domain"
	userrepo "github.com/freshmart/storefront/internal/user/repository"
)

func newSeeder(t *testing.T) (*Seeder, productdomain.Repository, userdomain.Repository) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	store, err := storage.New(t.TempDir(), storage.Params{
		Log:   zap.NewNop(),
		GenID: node,
		Clk:   clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	products := productrepo.Provide(store)
	users := userrepo.Provide(store)
	return New(Params{Log: zap.NewNop(), Products: products, Users: users}), products, users
}

func TestEnsureDefaultsSeedsEmptyCollections(t *testing.T) {
	seeder, products, users := newSeeder(t)

	result, err := seeder.EnsureDefaults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, result.ProductsSeeded)
	assert.Equal(t, 2, result.UsersSeeded)

	all, err := products.All(context.Background())
	require.NoError(t, err)
	for _, product := range all {
		assert.Equal(t, productdomain.StatusApproved, product.ValidationStatus)
		assert.NotEmpty(t, product.ID)
	}

	seeded, err := users.All(context.Background())
	require.NoError(t, err)
	require.Len(t, seeded, 2)
	assert.Equal(t, userdomain.RoleAdmin, seeded[0].Role)
}

func TestEnsureDefaultsSkipsPopulatedCollections(t *testing.T) {
	seeder, products, _ := newSeeder(t)

	_, err := products.Insert(context.Background(), productdomain.Product{Name: "Existing"})
	require.NoError(t, err)

	result, err := seeder.EnsureDefaults(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.ProductsSeeded)
	assert.Equal(t, 2, result.UsersSeeded)

	all, err := products.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestReseedReplacesCatalog(t *testing.T) {
	seeder, products, _ := newSeeder(t)

	_, err := products.Insert(context.Background(), productdomain.Product{Name: "Old Stock"})
	require.NoError(t, err)

	result, err := seeder.Reseed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, result.ProductsSeeded)

	all, err := products.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 5)
	for _, product := range all {
		assert.NotEqual(t, "Old Stock", product.Name)
	}
}
