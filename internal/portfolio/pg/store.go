package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"trade_agent/internal/models"
	"trade_agent/pkg/db"
)

// Store implement portfolio.Store on postgres.
type Store struct {
	tx *db.PgTxManager
}

func New(tx *db.PgTxManager) *Store {
	return &Store{tx: tx}
}

const schema = `
CREATE TABLE IF NOT EXISTS trades (
    id         BIGSERIAL PRIMARY KEY,
    strategy   TEXT NOT NULL,
    symbol     TEXT NOT NULL,
    shares     INTEGER NOT NULL,
    price      DOUBLE PRECISION NOT NULL,
    total      DOUBLE PRECISION NOT NULL,
    side       TEXT NOT NULL,
    ts         TIMESTAMPTZ NOT NULL,
    opp_score  DOUBLE PRECISION,
    risk_score DOUBLE PRECISION,
    commission DOUBLE PRECISION,
    reason     TEXT
);

CREATE TABLE IF NOT EXISTS positions (
    strategy      TEXT NOT NULL,
    symbol        TEXT NOT NULL,
    shares        INTEGER NOT NULL,
    avg_price     DOUBLE PRECISION NOT NULL,
    current_price DOUBLE PRECISION,
    total_value   DOUBLE PRECISION,
    pnl           DOUBLE PRECISION,
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (strategy, symbol)
);

CREATE TABLE IF NOT EXISTS portfolio_summary (
    id              BIGSERIAL PRIMARY KEY,
    strategy        TEXT NOT NULL,
    capital         DOUBLE PRECISION NOT NULL,
    total_pnl       DOUBLE PRECISION NOT NULL,
    daily_pnl       DOUBLE PRECISION NOT NULL,
    positions_count INTEGER NOT NULL,
    trades_today    INTEGER NOT NULL,
    ts              TIMESTAMPTZ NOT NULL
);
`

// Migrate создаёт таблицы, если их ещё нет.
func (s *Store) Migrate(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Store.Migrate: %w", err)
		}
	}()
	return s.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, schema)
		return err
	})
}

func (s *Store) AppendTrade(ctx context.Context, strategy string, tr models.TradeRecord) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Store.AppendTrade: %w", err)
		}
	}()
	return s.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO trades (strategy, symbol, shares, price, total, side, ts, opp_score, risk_score, commission, reason)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			strategy, tr.Symbol, tr.Shares, tr.Price, tr.Total, string(tr.Side),
			tr.Timestamp, tr.Score, tr.RiskScore, tr.Commission, string(tr.Reason),
		)
		return err
	})
}

func (s *Store) UpsertPosition(ctx context.Context, strategy string, p models.Position) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Store.UpsertPosition: %w", err)
		}
	}()
	return s.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO positions (strategy, symbol, shares, avg_price, current_price, total_value, pnl, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			ON CONFLICT (strategy, symbol) DO UPDATE SET
				shares        = EXCLUDED.shares,
				avg_price     = EXCLUDED.avg_price,
				current_price = EXCLUDED.current_price,
				total_value   = EXCLUDED.total_value,
				pnl           = EXCLUDED.pnl,
				updated_at    = now()`,
			strategy, p.Symbol, p.Shares, p.AvgPrice, p.CurrentPrice, p.TotalValue(), p.UnrealizedPnL,
		)
		return err
	})
}

func (s *Store) DeletePosition(ctx context.Context, strategy, symbol string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Store.DeletePosition: %w", err)
		}
	}()
	return s.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`DELETE FROM positions WHERE strategy = $1 AND symbol = $2`, strategy, symbol)
		return err
	})
}

func (s *Store) SaveSummary(ctx context.Context, strategy string, sum models.PortfolioSummary) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Store.SaveSummary: %w", err)
		}
	}()
	return s.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO portfolio_summary (strategy, capital, total_pnl, daily_pnl, positions_count, trades_today, ts)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			strategy, sum.Capital, sum.TotalPnL, sum.DailyPnL, sum.PositionsCount, sum.TradesToday, sum.Timestamp,
		)
		return err
	})
}

// ResetStrategy чистит все данные стратегии (операторский reset).
func (s *Store) ResetStrategy(ctx context.Context, strategy string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Store.ResetStrategy: %w", err)
		}
	}()
	return s.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		for _, q := range []string{
			`DELETE FROM trades WHERE strategy = $1`,
			`DELETE FROM positions WHERE strategy = $1`,
			`DELETE FROM portfolio_summary WHERE strategy = $1`,
		} {
			if _, err := tx.Exec(ctxTx, q, strategy); err != nil {
				return err
			}
		}
		return nil
	})
}
