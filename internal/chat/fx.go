package chat

import (
	"go.uber.org/fx"

	"github.com/freshmart/storefront/internal/ai/registry"
	"github.com/freshmart/storefront/internal/chat/service"
)

var Module = fx.Module("chat.service",
	fx.Provide(
		func(reg *registry.Registry) service.TextGateway { return reg },
		service.New,
	),
)
