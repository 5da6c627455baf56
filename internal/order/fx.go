package order

import (
	"github.com/freshmart/storefront/internal/order/repository"
	"github.com/freshmart/storefront/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
