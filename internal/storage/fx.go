package storage

import (
	"github.com/freshmart/storefront/internal/config"
)

// Provide builds the Store from application configuration.
func Provide(cfg config.Config, p Params) (*Store, error) {
	return New(cfg.DataDir, p)
}
