package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"trade_agent/internal/execution"
	"trade_agent/internal/models"
	"trade_agent/internal/notify"
	"trade_agent/internal/portfolio"
	"trade_agent/pkg/logger"
)

// ErrUnknownStrategy — операторская команда пришла по несуществующей стратегии.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Discovery — один shared-вызов на цикл, кандидаты общие для всех стратегий.
type Discovery interface {
	FindOpportunities(ctx context.Context) ([]models.Opportunity, error)
}

// PriceSource — текущая цена символа для mark-to-market.
type PriceSource interface {
	Price(ctx context.Context, symbol string) (float64, error)
}

type Options struct {
	PriceTimeout      time.Duration
	MaxParallelQuotes int

	// Fill подменяет модель исполнения. По умолчанию слиппедж ±2%.
	Fill execution.FillPricer
}

// Orchestrator владеет хэндлами всех стратегий и гоняет торговый цикл.
type Orchestrator struct {
	mu      sync.RWMutex
	handles map[string]*Handle
	order   []string // фиксированный порядок обхода

	discovery Discovery
	prices    PriceSource
	sched     Scheduler
	notifier  notify.Notifier

	priceTimeout time.Duration
	maxParallel  int

	running      atomic.Bool
	lastOppCount atomic.Int64
	lastReports  map[string]models.CycleReport
}

// New собирает оркестратор из валидных конфигов стратегий. Невалидные
// передаются отдельно и становятся inactive-хэндлами.
func New(
	strategies map[string]models.StrategyConfig,
	order []string,
	inactive map[string]string,
	store portfolio.Store,
	discovery Discovery,
	prices PriceSource,
	sched Scheduler,
	notifier notify.Notifier,
	opts Options,
) (*Orchestrator, error) {
	if len(strategies) == 0 && len(inactive) == 0 {
		return nil, errors.New("no strategies configured")
	}
	if opts.PriceTimeout <= 0 {
		opts.PriceTimeout = 10 * time.Second
	}
	if opts.MaxParallelQuotes <= 0 {
		opts.MaxParallelQuotes = 8
	}
	if opts.Fill == nil {
		opts.Fill = execution.NewSlippageFill(time.Now().UnixNano())
	}

	o := &Orchestrator{
		handles:      make(map[string]*Handle, len(strategies)+len(inactive)),
		order:        order,
		discovery:    discovery,
		prices:       prices,
		sched:        sched,
		notifier:     notifier,
		priceTimeout: opts.PriceTimeout,
		maxParallel:  opts.MaxParallelQuotes,
		lastReports:  make(map[string]models.CycleReport),
	}

	for _, name := range order {
		cfg, ok := strategies[name]
		if !ok {
			continue
		}
		o.handles[name] = newHandle(name, cfg, store, opts.Fill)
		logger.Info("strategy %s: capital %.2f, max %d trades/day", name, cfg.StartingCapital, cfg.MaxDailyTrades)
	}
	for name, reason := range inactive {
		o.handles[name] = inactiveHandle(name, reason)
	}

	if len(strategies) == 0 {
		// все стратегии невалидны — падаем на старте, работать нечем
		return nil, errors.New("no strategy could be initialized")
	}
	return o, nil
}

// Run крутит циклы до отмены контекста. Дневной сброс слушается в
// отдельной горутине, чтобы сигнал не ждал конца длинного цикла.
func (o *Orchestrator) Run(ctx context.Context) {
	o.running.Store(true)
	defer o.running.Store(false)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-o.sched.Rollover():
				o.resetDaily()
			}
		}
	}()

	o.notifySendf("trade agent started: %d strategies", len(o.order))
	// первый цикл сразу, дальше по расписанию
	o.RunCycle(ctx)
	for {
		if err := o.sched.Wait(ctx); err != nil {
			logger.Info("orchestrator stopped: %v", err)
			return
		}
		o.RunCycle(ctx)
	}
}

func (o *Orchestrator) resetDaily() {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, h := range o.handles {
		if h.Active {
			h.Ledger.ResetDaily()
		}
	}
	logger.Info("daily counters reset")
}

// Status — глобальный снапшот для презентационного слоя.
func (o *Orchestrator) Status() models.Status {
	o.mu.RLock()
	defer o.mu.RUnlock()

	st := models.Status{
		IsRunning:  o.running.Load(),
		Strategies: make(map[string]models.StrategyStatus, len(o.handles)),
	}
	for name, h := range o.handles {
		if !h.Active {
			st.Strategies[name] = models.StrategyStatus{InitError: h.InitErr}
			continue
		}
		sum := h.Ledger.Summary()
		s := models.StrategyStatus{
			IsActive:           true,
			Capital:            sum.Capital,
			TotalPnL:           sum.TotalPnL,
			DailyPnL:           sum.DailyPnL,
			PositionsCount:     sum.PositionsCount,
			TradesToday:        sum.TradesToday,
			OpportunitiesCount: int(o.lastOppCount.Load()),
		}
		if rep, ok := o.lastReports[name]; ok {
			repCopy := rep
			s.LastCycle = &repCopy
		}
		st.Strategies[name] = s
	}
	return st
}

// Positions — открытые позиции стратегии.
func (o *Orchestrator) Positions(name string) ([]models.Position, error) {
	h, err := o.activeHandle(name)
	if err != nil {
		return nil, err
	}
	return h.Ledger.Positions(), nil
}

// Trades — журнал сделок стратегии.
func (o *Orchestrator) Trades(name string) ([]models.TradeRecord, error) {
	h, err := o.activeHandle(name)
	if err != nil {
		return nil, err
	}
	return h.Ledger.Trades(), nil
}

// SetBalance — операторская команда: прямое выставление капитала.
func (o *Orchestrator) SetBalance(name string, amount float64) error {
	h, err := o.activeHandle(name)
	if err != nil {
		return err
	}
	h.Ledger.SetCapital(amount)
	logger.Info("[%s] balance set to %.2f by operator", name, amount)
	o.notifySendf("[%s] balance set to %.2f", name, amount)
	return nil
}

// Reset — операторская команда: стратегия к стартовому состоянию.
func (o *Orchestrator) Reset(ctx context.Context, name string) error {
	h, err := o.activeHandle(name)
	if err != nil {
		return err
	}
	h.Ledger.Reset(ctx)
	logger.Info("[%s] reset by operator", name)
	o.notifySendf("[%s] reset to starting capital", name)
	return nil
}

func (o *Orchestrator) activeHandle(name string) (*Handle, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	h, ok := o.handles[name]
	if !ok || !h.Active {
		return nil, ErrUnknownStrategy
	}
	return h, nil
}

func (o *Orchestrator) notifySendf(format string, args ...any) {
	if o.notifier == nil {
		return
	}
	o.notifier.Sendf(format, args...)
}
