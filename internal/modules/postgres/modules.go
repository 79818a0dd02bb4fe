package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"trade_agent/internal/modules/config"
	"trade_agent/internal/portfolio"
	"trade_agent/internal/portfolio/pg"
	"trade_agent/pkg/db"
)

// Module регистрируем как fx-провайдер.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				err = poolMaster.Ping(ctx)
				if err != nil {
					return nil, err
				}

				return db.NewPgTxManager(poolMaster), nil
			},
			func(ctx context.Context, tx *db.PgTxManager) (portfolio.Store, error) {
				store := pg.New(tx)
				if err := store.Migrate(ctx); err != nil {
					return nil, err
				}
				return store, nil
			},
		),
	)
}
