package validation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	aidomain "github.com/freshmart/storefront/internal/ai/domain"
	productdomain "github.com/freshmart/storefront/internal/product/domain"
)

func TestRunWorkerStopsDrainingAfterShutdown(t *testing.T) {
	gateway := &gatewayStub{
		image:    aidomain.Image{Data: []byte{1}, MIME: "image/png"},
		describe: "a fresh red apple",
		verdict:  `{"isValid": true, "score": 90, "issues": [], "reasoning": "ok"}`,
	}
	worker, repo, _ := newTestWorker(t, gateway)

	lc := fxtest.NewLifecycle(t)
	runWorker(lc, worker)
	lc.RequireStart()

	first := seedProduct(t, repo, "/uploads/a.png")
	require.True(t, worker.Enqueue(first.ID))
	require.Eventually(t, func() bool {
		stored, _, err := repo.Get(context.Background(), first.ID)
		return err == nil && stored.ValidationStatus == productdomain.StatusApproved
	}, 2*time.Second, 5*time.Millisecond)

	lc.RequireStop()

	second := seedProduct(t, repo, "/uploads/b.png")
	require.True(t, worker.Enqueue(second.ID))
	time.Sleep(50 * time.Millisecond)

	stored, _, err := repo.Get(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, productdomain.StatusPending, stored.ValidationStatus)
}
