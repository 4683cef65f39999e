package notification

import (
	"context"

	"github.com/smallbiznis/dukaan/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideProviders(cfg config.Config, log *zap.Logger) []Provider {
	providers := []Provider{NewLogProvider(log)}
	if cfg.SMTP.Enabled {
		providers = append(providers, NewEmailProvider(cfg.SMTP))
	}
	return providers
}

// Module wires the async dispatcher with the configured providers.
var Module = fx.Module("notification",
	fx.Provide(
		fx.Annotate(provideProviders, fx.ResultTags(`group:"notification.providers,flatten"`)),
		New,
		func(d *AsyncDispatcher) Dispatcher { return d },
	),
	fx.Invoke(func(lc fx.Lifecycle, d *AsyncDispatcher) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				_ = ctx
				d.Drain()
				return nil
			},
		})
	}),
)
