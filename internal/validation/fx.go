package validation

import (
	"context"

	"go.uber.org/fx"

	"github.com/freshmart/storefront/internal/ai/registry"
	productdomain "github.com/freshmart/storefront/internal/product/domain"
)

var Module = fx.Module("validation",
	fx.Provide(
		func(reg *registry.Registry) ModelGateway { return reg },
		NewWorker,
		func(w *Worker) productdomain.ValidationTrigger { return w },
	),
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, worker *Worker) {
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go worker.RunForever(runCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
