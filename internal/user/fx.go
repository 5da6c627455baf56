package user

import (
	"github.com/freshmart/storefront/internal/user/repository"
	"github.com/freshmart/storefront/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
