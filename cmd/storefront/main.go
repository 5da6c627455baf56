package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/freshmart/storefront/internal/ai"
	"github.com/freshmart/storefront/internal/chat"
	"github.com/freshmart/storefront/internal/clock"
	"github.com/freshmart/storefront/internal/config"
	"github.com/freshmart/storefront/internal/logger"
	"github.com/freshmart/storefront/internal/notify"
	"github.com/freshmart/storefront/internal/observability"
	"github.com/freshmart/storefront/internal/order"
	"github.com/freshmart/storefront/internal/product"
	"github.com/freshmart/storefront/internal/seed"
	"github.com/freshmart/storefront/internal/server"
	"github.com/freshmart/storefront/internal/storage"
	"github.com/freshmart/storefront/internal/user"
	"github.com/freshmart/storefront/internal/validation"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		storage.Module,

		product.Module,
		order.Module,
		user.Module,
		ai.Module,
		validation.Module,
		chat.Module,
		notify.Module,
		seed.Module,

		server.Module,
	)

	app.Run()
}

// RegisterSnowflake builds the node used for record ID generation.
func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
