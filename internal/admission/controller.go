package admission

import "trade_agent/internal/models"

// PortfolioView — read-only взгляд на портфель стратегии.
// Контроллер ничего не мутирует.
type PortfolioView interface {
	AvailableCapital() float64
	HasPosition(symbol string) bool
	DailyPnL() float64
}

type Decision struct {
	Accepted bool
	Reason   models.RejectReason
}

func accept() Decision { return Decision{Accepted: true} }

func reject(r models.RejectReason) Decision { return Decision{Reason: r} }

// Decide прогоняет проверки в фиксированном порядке с выходом на первой
// неудаче. Порядок влияет только на диагностику, не на корректность.
// size — смоделированный размер позиции для этого кандидата.
func Decide(o models.Opportunity, size float64, pf PortfolioView, cfg models.StrategyConfig) Decision {
	if size > pf.AvailableCapital() {
		return reject(models.RejectInsufficientCapital)
	}
	if pf.HasPosition(o.Symbol) {
		return reject(models.RejectDuplicatePosition)
	}
	if o.RiskScore > cfg.MaxRiskScore {
		return reject(models.RejectRiskTooHigh)
	}
	if pf.DailyPnL() < -cfg.MaxDailyLoss {
		return reject(models.RejectDailyLossLimit)
	}
	if o.Score < cfg.MinScoreThreshold {
		return reject(models.RejectScoreTooLow)
	}
	return accept()
}
