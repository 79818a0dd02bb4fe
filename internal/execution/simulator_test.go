package execution

import (
	"errors"
	"math"
	"testing"

	"trade_agent/internal/models"
)

func sizingConfig() models.StrategyConfig {
	return models.StrategyConfig{
		StartingCapital: 10000,
		RiskPercentage:  2,
		MaxPositionPct:  5,
		StopLossPct:     3,
		TakeProfitPct:   6,
		MaxDailyTrades:  10,
		MaxRiskScore:    0.8,
	}
}

func TestPositionSizeExample(t *testing.T) {
	// capital=10000, risk_pct=2, max_position_pct=5, risk_score=0.4:
	// risk_amount=200, size=200*1.6=320, cap=500 => 320
	sim := NewSimulator(sizingConfig(), FixedFill{}, false)

	size := sim.PositionSize(10000, 0.4)
	if math.Abs(size-320) > 1e-9 {
		t.Fatalf("size = %v, want 320", size)
	}
}

func TestPositionSizeCappedByMaxPct(t *testing.T) {
	cfg := sizingConfig()
	cfg.MaxPositionPct = 3 // cap = 300
	sim := NewSimulator(cfg, FixedFill{}, false)

	if size := sim.PositionSize(10000, 0); size != 300 {
		t.Fatalf("size = %v, want cap 300", size)
	}
}

func TestPositionSizeMinimum(t *testing.T) {
	sim := NewSimulator(sizingConfig(), FixedFill{}, false)

	if size := sim.PositionSize(1000, 0.9); size < 100 {
		t.Fatalf("size = %v, below $100 floor", size)
	}
}

func TestExecuteSharesFloored(t *testing.T) {
	sim := NewSimulator(sizingConfig(), FixedFill{}, false)

	fill, err := sim.Execute(models.Opportunity{Symbol: "AAPL", CurrentPrice: 50}, 320)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fill.Shares != 6 {
		t.Fatalf("shares = %d, want 6", fill.Shares)
	}
	if fill.Price != 50 {
		t.Fatalf("price = %v, want 50 with no slippage", fill.Price)
	}
	if fill.Total != 300 {
		t.Fatalf("total = %v, want 300", fill.Total)
	}
}

func TestExecuteNegligibleSize(t *testing.T) {
	sim := NewSimulator(sizingConfig(), FixedFill{}, false)

	_, err := sim.Execute(models.Opportunity{Symbol: "BRK", CurrentPrice: 650000}, 320)
	if !errors.Is(err, ErrNegligibleSize) {
		t.Fatalf("expected ErrNegligibleSize, got %v", err)
	}
}

func TestExecuteCommission(t *testing.T) {
	sim := NewSimulator(sizingConfig(), FixedFill{}, true)

	fill, err := sim.Execute(models.Opportunity{Symbol: "AAPL", CurrentPrice: 50}, 320)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := fill.Total * 0.005
	if math.Abs(fill.Commission-want) > 1e-9 {
		t.Fatalf("commission = %v, want %v", fill.Commission, want)
	}
	// комиссия не влияет на количество акций
	if fill.Shares != 6 {
		t.Fatalf("shares = %d, want 6", fill.Shares)
	}
}

func TestSlippageWithinBounds(t *testing.T) {
	fp := NewSlippageFill(42)
	for i := 0; i < 1000; i++ {
		px := fp.FillPrice(100)
		if px < 97.99 || px > 102.0 {
			t.Fatalf("fill price %v outside ±2%% of 100", px)
		}
	}
}
