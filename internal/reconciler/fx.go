package reconciler

import (
	"context"

	"github.com/globaledutech/payments/internal/config"
	"go.uber.org/fx"
)

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Interval:     cfg.Reconciler.Interval,
		ErrorBackoff: cfg.Reconciler.ErrorBackoff,
		Lookback:     cfg.Reconciler.Lookback,
	}
}

var Module = fx.Module("reconciler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(Start),
)

// Start launches the loop once at process startup; shutdown is the only way
// to stop it.
func Start(lc fx.Lifecycle, r *Reconciler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go r.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
