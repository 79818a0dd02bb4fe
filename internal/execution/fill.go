package execution

import (
	"math/rand"
	"sync"

	"trade_agent/internal/helper"
)

// FillPricer моделирует цену исполнения от базовой цены кандидата.
// Продакшен — слиппедж со случайностью, тесты — детерминированная реализация.
type FillPricer interface {
	FillPrice(base float64) float64
}

const (
	defaultSlippage = 0.02 // ±2%
	priceTick       = 0.01
)

// SlippageFill — базовая цена ± slippage, равномерно.
type SlippageFill struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	slippage float64
}

func NewSlippageFill(seed int64) *SlippageFill {
	return &SlippageFill{
		rnd:      rand.New(rand.NewSource(seed)),
		slippage: defaultSlippage,
	}
}

func (s *SlippageFill) FillPrice(base float64) float64 {
	s.mu.Lock()
	variation := (s.rnd.Float64()*2 - 1) * s.slippage
	s.mu.Unlock()
	return helper.RoundDownToTick(base*(1+variation), priceTick)
}

// FixedFill — детерминированная цена исполнения: base*(1+Offset).
type FixedFill struct {
	Offset float64
}

func (f FixedFill) FillPrice(base float64) float64 {
	return helper.RoundDownToTick(base*(1+f.Offset), priceTick)
}
