package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"

	"trade_agent/internal/admission"
	"trade_agent/internal/execution"
	"trade_agent/internal/models"
	"trade_agent/internal/portfolio"
	"trade_agent/internal/scoring"
	"trade_agent/pkg/logger"
)

// RunCycle — один торговый цикл: общий discovery, затем шаг каждой
// активной стратегии. Стратегии работают на раздельном состоянии и
// общем read-only списке кандидатов, поэтому шаги идут параллельно.
func (o *Orchestrator) RunCycle(ctx context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "orchestrator.cycle")
	defer span.Finish()

	opps, err := o.discovery.FindOpportunities(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Error("discovery failed, cycle continues without candidates: %v", err)
	}
	o.lastOppCount.Store(int64(len(opps)))
	span.SetTag("candidates", len(opps))

	reports := make([]models.CycleReport, len(o.order))
	var wg sync.WaitGroup
	for i, name := range o.order {
		h, ok := o.handles[name]
		if !ok || !h.Active {
			continue
		}
		wg.Add(1)
		go func(i int, h *Handle) {
			defer wg.Done()
			reports[i] = o.stepStrategy(ctx, h, opps)
		}(i, h)
	}
	wg.Wait()

	o.mu.Lock()
	for i, name := range o.order {
		if reports[i].Strategy != "" {
			o.lastReports[name] = reports[i]
		}
	}
	o.mu.Unlock()
}

// stepStrategy: ранжирование, mark-to-market и выходы, затем admission
// по ранжированному списку до лимита сделок.
func (o *Orchestrator) stepStrategy(ctx context.Context, h *Handle, opps []models.Opportunity) models.CycleReport {
	span, ctx := opentracing.StartSpanFromContext(ctx, "orchestrator.step")
	span.SetTag("strategy", h.Name)
	defer span.Finish()

	rep := models.CycleReport{Strategy: h.Name, At: time.Now()}

	ranked := scoring.Rank(opps, h.Cfg.ReturnWeightsOrDefault())
	rep.Ranked = len(ranked)

	o.markAndExit(ctx, h, &rep)

	for i := range ranked {
		if ctx.Err() != nil {
			break
		}
		if h.Ledger.TradesToday() >= h.Cfg.MaxDailyTrades {
			break
		}
		o.tryOpen(ctx, h, ranked[i], &rep)
	}

	h.Ledger.SaveSummary(ctx)
	for _, err := range h.Ledger.DrainStoreErrors() {
		rep.AddError(err)
	}
	return rep
}

// markAndExit обновляет открытые позиции по текущим ценам и проверяет
// stop-loss/take-profit. Цены тянутся параллельно с ограничением и
// таймаутом на запрос. Символ без цены пропускается до следующего цикла.
func (o *Orchestrator) markAndExit(ctx context.Context, h *Handle, rep *models.CycleReport) {
	symbols := h.Ledger.OpenSymbols()
	if len(symbols) == 0 {
		return
	}

	prices := make([]float64, len(symbols))
	failed := make([]bool, len(symbols))

	sem := make(chan struct{}, o.maxParallel)
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, o.priceTimeout)
			defer cancel()

			price, err := o.prices.Price(callCtx, symbol)
			if err != nil || price <= 0 {
				logger.Warn("[%s] price %s unavailable: %v", h.Name, symbol, err)
				failed[i] = true
				return
			}
			prices[i] = price
		}(i, symbol)
	}
	wg.Wait()

	for i, symbol := range symbols {
		if failed[i] {
			rep.Skipped = append(rep.Skipped, symbol)
			continue
		}
		if err := h.Ledger.MarkToMarket(ctx, symbol, prices[i]); err != nil {
			rep.AddError(err)
			continue
		}
		reason, closed, err := h.Ledger.EvaluateExit(ctx, symbol, prices[i])
		if err != nil {
			rep.AddError(err)
			continue
		}
		if closed {
			rep.Closed++
			o.notifySendf("[%s] %s closed: %s @ %.2f", h.Name, symbol, reason, prices[i])
		}
	}
}

func (o *Orchestrator) tryOpen(ctx context.Context, h *Handle, cand models.Opportunity, rep *models.CycleReport) {
	size := h.Sim.PositionSize(h.Ledger.AvailableCapital(), cand.RiskScore)

	d := admission.Decide(cand, size, h.Ledger, h.Cfg)
	if !d.Accepted {
		rep.Reject(d.Reason)
		if d.Reason == models.RejectDailyLossLimit && rep.Rejections[d.Reason] == 1 {
			o.notifySendf("[%s] daily loss limit hit (%.2f), entries paused until rollover",
				h.Name, h.Ledger.DailyPnL())
		}
		return
	}

	fill, err := h.Sim.Execute(cand, size)
	if err != nil {
		if errors.Is(err, execution.ErrNegligibleSize) {
			rep.Reject(models.RejectNegligibleSize)
			return
		}
		rep.AddError(err)
		return
	}

	err = h.Ledger.Open(ctx, cand.Symbol, fill.Shares, fill.Price, fill.Commission, cand.Score, cand.RiskScore)
	switch {
	case errors.Is(err, portfolio.ErrPositionExists):
		rep.Reject(models.RejectDuplicatePosition)
	case errors.Is(err, portfolio.ErrCapitalExceeded):
		rep.Reject(models.RejectInsufficientCapital)
	case err != nil:
		rep.AddError(err)
	default:
		rep.Opened++
		logger.Info("[%s] opened %s: %d shares @ %.2f (score %.2f)",
			h.Name, cand.Symbol, fill.Shares, fill.Price, cand.Score)
		o.notifySendf("[%s] opened %s: %d @ %.2f", h.Name, cand.Symbol, fill.Shares, fill.Price)
	}
}
