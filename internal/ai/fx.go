package ai

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/freshmart/storefront/internal/ai/registry"
)

var Module = fx.Module("ai",
	fx.Provide(registry.New),
	fx.Invoke(registerHooks),
)

func registerHooks(lc fx.Lifecycle, reg *registry.Registry) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			reg.RefreshHealth(probeCtx)
			return nil
		},
	})
}
