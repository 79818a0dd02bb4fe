package orchestrator

import (
	"context"

	"go.uber.org/fx"

	"trade_agent/internal/modules/config"
	"trade_agent/internal/modules/discovery/service"
	"trade_agent/internal/notify"
	"trade_agent/internal/portfolio"
	"trade_agent/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("orchestrator",
		fx.Provide(
			func(cfg *config.Config) *IntervalScheduler {
				return NewIntervalScheduler(cfg.ScanInterval)
			},
			func(cfg *config.Config) (notify.Notifier, error) {
				if cfg.Telegram.Token == "" {
					return notify.NewStdout(), nil
				}
				return notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
			},
			func(
				cfg *config.Config,
				store portfolio.Store,
				engine *service.Engine,
				quotes *service.SimQuoteSource,
				sched *IntervalScheduler,
				notifier notify.Notifier,
			) (*Orchestrator, error) {
				return New(
					cfg.Strategies,
					cfg.StrategyOrder,
					cfg.Inactive,
					store,
					engine,
					quotes,
					sched,
					notifier,
					Options{
						PriceTimeout:      cfg.PriceTimeout,
						MaxParallelQuotes: cfg.MaxParallelQuotes,
					},
				)
			},
		),

		fx.Invoke(func(lc fx.Lifecycle, o *Orchestrator, sched *IntervalScheduler, notifier notify.Notifier) {
			runCtx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})

			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					if tg, ok := notifier.(*notify.Telegram); ok {
						tg.SetStatusFunc(func() string {
							return statusText(o.Status())
						})
						if err := tg.Start(runCtx); err != nil {
							return err
						}
					}
					go sched.RunRollover(runCtx)
					go func() {
						defer close(done)
						logger.Info("orchestrator loop started")
						o.Run(runCtx)
					}()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					cancel()
					select {
					case <-done:
					case <-ctx.Done():
						return ctx.Err()
					}
					return nil
				},
			})
		}),
	)
}
