package portfolio

import (
	"context"

	"trade_agent/internal/models"
)

// Store — персистентный слой портфеля. Журнал сделок append-only,
// позиции апсертятся по ключу (стратегия, символ). Записи выполняются
// только из шага владеющей стратегии, межстратегийной конкуренции нет.
type Store interface {
	AppendTrade(ctx context.Context, strategy string, tr models.TradeRecord) error
	UpsertPosition(ctx context.Context, strategy string, p models.Position) error
	DeletePosition(ctx context.Context, strategy, symbol string) error
	SaveSummary(ctx context.Context, strategy string, s models.PortfolioSummary) error
	ResetStrategy(ctx context.Context, strategy string) error
}
