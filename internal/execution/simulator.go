package execution

import (
	"errors"
	"math"

	"trade_agent/internal/models"
)

// ErrNegligibleSize — размер позиции не дотягивает до одной акции.
// Сделка не записывается.
var ErrNegligibleSize = errors.New("position size too small")

const (
	minPositionUSD = 100.0
	commissionRate = 0.005
)

// Fill — результат смоделированного исполнения.
type Fill struct {
	Shares     int
	Price      float64
	Total      float64
	Commission float64
}

// Simulator считает размер позиции и моделирует исполнение для одной стратегии.
type Simulator struct {
	cfg                models.StrategyConfig
	fill               FillPricer
	simulateCommission bool
}

func NewSimulator(cfg models.StrategyConfig, fill FillPricer, simulateCommission bool) *Simulator {
	return &Simulator{cfg: cfg, fill: fill, simulateCommission: simulateCommission}
}

// PositionSize: risk_amount * (1 + (1 - risk_score)), сверху ограничен
// max_position_pct от капитала, снизу — минимумом $100.
// Чем ниже риск кандидата, тем крупнее позиция.
func (s *Simulator) PositionSize(capital, riskScore float64) float64 {
	riskAmount := capital * s.cfg.RiskPercentage / 100

	size := riskAmount * (1 + (1 - riskScore))

	maxPosition := capital * s.cfg.MaxPositionPct / 100
	size = math.Min(size, maxPosition)
	size = math.Max(size, minPositionUSD)

	return size
}

// Execute моделирует исполнение на size долларов: цена через FillPricer,
// количество акций — целая часть. Комиссия учитывается отдельно и
// на количество акций не влияет.
func (s *Simulator) Execute(o models.Opportunity, size float64) (Fill, error) {
	price := s.fill.FillPrice(o.CurrentPrice)
	if price <= 0 {
		return Fill{}, ErrNegligibleSize
	}

	shares := int(math.Floor(size / price))
	if shares <= 0 {
		return Fill{}, ErrNegligibleSize
	}

	total := float64(shares) * price
	f := Fill{Shares: shares, Price: price, Total: total}
	if s.simulateCommission {
		f.Commission = total * commissionRate
	}
	return f, nil
}
