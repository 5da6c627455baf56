package notify

import "go.uber.org/fx"

var Module = fx.Module("notify",
	fx.Provide(NewHub),
)
