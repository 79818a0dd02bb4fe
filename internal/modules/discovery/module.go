package discovery

import (
	"time"

	"go.uber.org/fx"

	"trade_agent/internal/modules/config"
	"trade_agent/internal/modules/discovery/service"
)

func Module() fx.Option {
	return fx.Module("discovery",
		fx.Provide(
			func() *service.SimQuoteSource {
				return service.NewSimQuoteSource(time.Now().UnixNano())
			},
			func() *service.SimSignals {
				return service.NewSimSignals(time.Now().UnixNano())
			},
			func(cfg *config.Config, quotes *service.SimQuoteSource, sig *service.SimSignals) *service.Engine {
				return service.NewEngine(cfg.Universe, quotes, sig, sig, sig)
			},
		),
	)
}
