package scheduler

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, sweeper *Sweeper) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				sweeper.Start()
				return nil
			},
			OnStop: func(context.Context) error {
				sweeper.Stop()
				return nil
			},
		})
	}),
)
