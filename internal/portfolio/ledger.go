package portfolio

import (
	"context"
	"sync"
	"time"

	"trade_agent/internal/models"
	"trade_agent/pkg/logger"
)

// Ledger владеет капиталом, открытыми позициями и журналом сделок одной
// стратегии. Машина состояний по (стратегия, символ): Absent -> Open -> Absent,
// закрытые позиции живут только в журнале.
type Ledger struct {
	mu sync.Mutex

	strategy string
	cfg      models.StrategyConfig

	capital       float64
	totalRealized float64
	dailyPnL      float64
	tradesToday   int

	positions map[string]*models.Position
	trades    []models.TradeRecord

	store     Store // nil — работаем без персистентности
	storeErrs []error

	now func() time.Time
}

func NewLedger(strategy string, cfg models.StrategyConfig, store Store) *Ledger {
	return &Ledger{
		strategy:  strategy,
		cfg:       cfg,
		capital:   cfg.StartingCapital,
		positions: make(map[string]*models.Position),
		store:     store,
		now:       time.Now,
	}
}

// Open: Absent -> Open. Списывает капитал, пишет BUY в журнал,
// инкрементирует trades_today. Комиссия учитывается в записи сделки
// и на списание капитала не влияет.
func (l *Ledger) Open(ctx context.Context, symbol string, shares int, price, commission, score, riskScore float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.positions[symbol]; ok {
		return ErrPositionExists
	}

	total := float64(shares) * price
	if l.capital-total < 0 {
		return ErrCapitalExceeded
	}
	l.capital -= total

	pos := &models.Position{
		Symbol:       symbol,
		Shares:       shares,
		AvgPrice:     price,
		CurrentPrice: price,
		OpenedAt:     l.now(),
	}
	l.positions[symbol] = pos

	tr := models.TradeRecord{
		Symbol:     symbol,
		Shares:     shares,
		Price:      price,
		Total:      total,
		Side:       models.SideBuy,
		Timestamp:  l.now(),
		Score:      score,
		RiskScore:  riskScore,
		Commission: commission,
	}
	l.trades = append(l.trades, tr)
	l.tradesToday++

	l.persistTrade(ctx, tr)
	l.persistPosition(ctx, *pos)
	return nil
}

// MarkToMarket пересчитывает unrealized_pnl открытой позиции.
func (l *Ledger) MarkToMarket(ctx context.Context, symbol string, price float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[symbol]
	if !ok {
		return ErrNoPosition
	}
	pos.CurrentPrice = price
	pos.UnrealizedPnL = float64(pos.Shares) * (price - pos.AvgPrice)

	l.persistPosition(ctx, *pos)
	return nil
}

// EvaluateExit проверяет stop-loss и take-profit. Стоп проверяется первым —
// порядок зафиксирован для детерминизма. Возвращает причину закрытия,
// если позиция была закрыта.
func (l *Ledger) EvaluateExit(ctx context.Context, symbol string, price float64) (models.CloseReason, bool, error) {
	l.mu.Lock()
	pos, ok := l.positions[symbol]
	if !ok {
		l.mu.Unlock()
		return "", false, ErrNoPosition
	}
	pct := (price - pos.AvgPrice) / pos.AvgPrice * 100
	l.mu.Unlock()

	if pct <= -l.cfg.StopLossPct {
		if err := l.Close(ctx, symbol, price, models.CloseStopLoss); err != nil {
			return "", false, err
		}
		return models.CloseStopLoss, true, nil
	}
	if pct >= l.cfg.TakeProfitPct {
		if err := l.Close(ctx, symbol, price, models.CloseTakeProfit); err != nil {
			return "", false, err
		}
		return models.CloseTakeProfit, true, nil
	}
	return "", false, nil
}

// Close: Open -> Absent. Возвращает капитал, фиксирует realized P&L,
// пишет SELL в журнал.
func (l *Ledger) Close(ctx context.Context, symbol string, price float64, reason models.CloseReason) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[symbol]
	if !ok {
		return ErrNoPosition
	}

	realized := float64(pos.Shares) * (price - pos.AvgPrice)
	l.capital += float64(pos.Shares) * price
	l.totalRealized += realized
	l.dailyPnL += realized
	delete(l.positions, symbol)

	tr := models.TradeRecord{
		Symbol:    symbol,
		Shares:    pos.Shares,
		Price:     price,
		Total:     float64(pos.Shares) * price,
		Side:      models.SideSell,
		Timestamp: l.now(),
		Reason:    reason,
	}
	l.trades = append(l.trades, tr)

	logger.Info("[%s] closed %s: %d shares @ %.2f (%s), realized %.2f",
		l.strategy, symbol, tr.Shares, price, reason, realized)

	l.persistTrade(ctx, tr)
	l.persistDelete(ctx, symbol)
	return nil
}

// ResetDaily сбрасывает дневные счётчики. Вызывается оркестратором ровно
// один раз на сигнал смены дня, а не по опросу часов.
func (l *Ledger) ResetDaily() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dailyPnL = 0
	l.tradesToday = 0
}

// SetCapital — операторская команда: прямое выставление капитала.
func (l *Ledger) SetCapital(amount float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.capital = amount
}

// Reset — операторская команда: позиции, журнал и P&L обнуляются,
// капитал возвращается к стартовому.
func (l *Ledger) Reset(ctx context.Context) {
	l.mu.Lock()
	l.capital = l.cfg.StartingCapital
	l.totalRealized = 0
	l.dailyPnL = 0
	l.tradesToday = 0
	l.positions = make(map[string]*models.Position)
	l.trades = nil
	l.mu.Unlock()

	if l.store != nil {
		if err := l.store.ResetStrategy(ctx, l.strategy); err != nil {
			l.recordStoreErr(err)
		}
	}
}

func (l *Ledger) AvailableCapital() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.capital
}

func (l *Ledger) HasPosition(symbol string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.positions[symbol]
	return ok
}

func (l *Ledger) DailyPnL() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dailyPnL
}

func (l *Ledger) TradesToday() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tradesToday
}

// OpenSymbols — символы открытых позиций для mark-to-market прохода.
func (l *Ledger) OpenSymbols() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.positions))
	for s := range l.positions {
		out = append(out, s)
	}
	return out
}

// Positions — копия открытых позиций.
func (l *Ledger) Positions() []models.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, *p)
	}
	return out
}

// Trades — копия журнала сделок.
func (l *Ledger) Trades() []models.TradeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.TradeRecord, len(l.trades))
	copy(out, l.trades)
	return out
}

func (l *Ledger) Summary() models.PortfolioSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return models.PortfolioSummary{
		Capital:        l.capital,
		TotalPnL:       l.totalRealized,
		DailyPnL:       l.dailyPnL,
		PositionsCount: len(l.positions),
		TradesToday:    l.tradesToday,
		Timestamp:      l.now(),
	}
}

// SaveSummary — периодический снапшот портфеля в стор.
func (l *Ledger) SaveSummary(ctx context.Context) {
	if l.store == nil {
		return
	}
	if err := l.store.SaveSummary(ctx, l.strategy, l.Summary()); err != nil {
		l.recordStoreErr(err)
	}
}

// DrainStoreErrors забирает накопленные ошибки персистентности.
// Они попадают в CycleReport, а не теряются в логах.
func (l *Ledger) DrainStoreErrors() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	errs := l.storeErrs
	l.storeErrs = nil
	return errs
}

func (l *Ledger) persistTrade(ctx context.Context, tr models.TradeRecord) {
	if l.store == nil {
		return
	}
	if err := l.store.AppendTrade(ctx, l.strategy, tr); err != nil {
		logger.Error("[%s] append trade %s: %v", l.strategy, tr.Symbol, err)
		l.storeErrs = append(l.storeErrs, err)
	}
}

func (l *Ledger) persistPosition(ctx context.Context, p models.Position) {
	if l.store == nil {
		return
	}
	if err := l.store.UpsertPosition(ctx, l.strategy, p); err != nil {
		logger.Error("[%s] upsert position %s: %v", l.strategy, p.Symbol, err)
		l.storeErrs = append(l.storeErrs, err)
	}
}

func (l *Ledger) persistDelete(ctx context.Context, symbol string) {
	if l.store == nil {
		return
	}
	if err := l.store.DeletePosition(ctx, l.strategy, symbol); err != nil {
		logger.Error("[%s] delete position %s: %v", l.strategy, symbol, err)
		l.storeErrs = append(l.storeErrs, err)
	}
}

func (l *Ledger) recordStoreErr(err error) {
	l.mu.Lock()
	l.storeErrs = append(l.storeErrs, err)
	l.mu.Unlock()
}
