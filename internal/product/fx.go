package product

import (
	"github.com/freshmart/storefront/internal/product/repository"
	"github.com/freshmart/storefront/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
