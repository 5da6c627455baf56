package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshmart/storefront/internal/clock"
	"github.com/freshmart/storefront/internal/storage"
	"github.com/freshmart/storefront/internal/user/domain"
	"github.com/freshmart/storefront/internal/user/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	store, err := storage.New(t.TempDir(), storage.Params{
		Log:   zap.NewNop(),
		GenID: node,
		Clk:   clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	return New(Params{Log: zap.NewNop(), Repo: repository.Provide(store)})
}

func TestCreateDefaultsRoleToUser(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CreateRequest{
		Username: "maria",
		Email:    "maria@example.com",
		FullName: "Maria Silva",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleUser, created.Role)
	assert.NotEmpty(t, created.ID)
}

func TestCreateRequiresUsernameAndEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{Username: "maria"})
	assert.ErrorIs(t, err, domain.ErrMissingFields)

	_, err = svc.Create(context.Background(), domain.CreateRequest{Email: "maria@example.com"})
	assert.ErrorIs(t, err, domain.ErrMissingFields)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Username: "maria", Email: "maria@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{Username: "other", Email: "Maria@Example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
