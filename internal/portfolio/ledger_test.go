package portfolio

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_agent/internal/models"
)

func ledgerConfig() models.StrategyConfig {
	return models.StrategyConfig{
		StartingCapital:   10000,
		RiskPercentage:    2,
		MaxPositionPct:    5,
		StopLossPct:       3,
		TakeProfitPct:     6,
		MaxDailyTrades:    10,
		MaxDailyLoss:      500,
		MinScoreThreshold: 0.1,
		MaxRiskScore:      0.8,
	}
}

func TestOpenDebitsCapitalAndLogsTrade(t *testing.T) {
	l := NewLedger("conservative", ledgerConfig(), nil)
	ctx := context.Background()

	require.NoError(t, l.Open(ctx, "AAPL", 6, 50, 1.5, 0.5, 0.4))

	assert.Equal(t, 10000.0-300.0, l.AvailableCapital())
	assert.True(t, l.HasPosition("AAPL"))
	assert.Equal(t, 1, l.TradesToday())

	trades := l.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, models.SideBuy, trades[0].Side)
	assert.Equal(t, 6, trades[0].Shares)
	assert.Equal(t, 300.0, trades[0].Total)
	assert.Equal(t, 0.5, trades[0].Score)
	assert.Equal(t, 0.4, trades[0].RiskScore)
	assert.Equal(t, 1.5, trades[0].Commission)
}

func TestOpenRejectsDuplicate(t *testing.T) {
	l := NewLedger("conservative", ledgerConfig(), nil)
	ctx := context.Background()

	require.NoError(t, l.Open(ctx, "AAPL", 6, 50, 1.5, 0.5, 0.4))
	err := l.Open(ctx, "AAPL", 1, 50, 0.25, 0.5, 0.4)
	assert.ErrorIs(t, err, ErrPositionExists)

	// инвариант: не больше одной открытой позиции на символ
	assert.Len(t, l.Positions(), 1)
	assert.Equal(t, 1, l.TradesToday())
}

func TestOpenRejectsCapitalExceeded(t *testing.T) {
	l := NewLedger("conservative", ledgerConfig(), nil)
	ctx := context.Background()

	err := l.Open(ctx, "AAPL", 1000, 50, 250, 0.5, 0.4) // 50000 > 10000
	assert.ErrorIs(t, err, ErrCapitalExceeded)
	assert.Equal(t, 10000.0, l.AvailableCapital())
	assert.Empty(t, l.Trades())
	assert.Zero(t, l.TradesToday())
}

func TestMarkToMarket(t *testing.T) {
	l := NewLedger("conservative", ledgerConfig(), nil)
	ctx := context.Background()

	require.NoError(t, l.Open(ctx, "AAPL", 10, 100, 5, 0.5, 0.4))
	require.NoError(t, l.MarkToMarket(ctx, "AAPL", 103))

	pos := l.Positions()[0]
	assert.Equal(t, 103.0, pos.CurrentPrice)
	assert.InDelta(t, 30.0, pos.UnrealizedPnL, 1e-9)

	assert.ErrorIs(t, l.MarkToMarket(ctx, "GOOG", 100), ErrNoPosition)
}

func TestEvaluateExitStopLossBoundary(t *testing.T) {
	ctx := context.Background()

	// avg=100, stop_loss_pct=3: 97.00 триггерит, 97.01 — нет
	l := NewLedger("conservative", ledgerConfig(), nil)
	require.NoError(t, l.Open(ctx, "AAPL", 10, 100, 5, 0.5, 0.4))

	reason, closed, err := l.EvaluateExit(ctx, "AAPL", 97.01)
	require.NoError(t, err)
	assert.False(t, closed, "97.01 must not trigger stop loss")
	assert.Empty(t, reason)

	reason, closed, err = l.EvaluateExit(ctx, "AAPL", 97.00)
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, models.CloseStopLoss, reason)
	assert.False(t, l.HasPosition("AAPL"))
}

func TestEvaluateExitTakeProfit(t *testing.T) {
	ctx := context.Background()
	l := NewLedger("conservative", ledgerConfig(), nil)
	require.NoError(t, l.Open(ctx, "AAPL", 10, 100, 5, 0.5, 0.4))

	reason, closed, err := l.EvaluateExit(ctx, "AAPL", 106)
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, models.CloseTakeProfit, reason)
}

func TestCloseCapitalIdentity(t *testing.T) {
	ctx := context.Background()
	l := NewLedger("conservative", ledgerConfig(), nil)
	require.NoError(t, l.Open(ctx, "AAPL", 10, 100, 5, 0.5, 0.4))

	before := l.AvailableCapital()
	require.NoError(t, l.Close(ctx, "AAPL", 106, models.CloseTakeProfit))

	// capital_after = capital_before + shares*fill_price, состояние Absent
	after := l.AvailableCapital()
	if math.Abs(after-(before+10*106)) > 1e-9 {
		t.Fatalf("capital identity broken: before=%v after=%v", before, after)
	}
	assert.False(t, l.HasPosition("AAPL"))

	assert.InDelta(t, 60.0, l.DailyPnL(), 1e-9)
	sum := l.Summary()
	assert.InDelta(t, 60.0, sum.TotalPnL, 1e-9)

	trades := l.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, models.SideSell, trades[1].Side)
	assert.Equal(t, models.CloseTakeProfit, trades[1].Reason)
}

func TestResetDaily(t *testing.T) {
	ctx := context.Background()
	l := NewLedger("conservative", ledgerConfig(), nil)
	require.NoError(t, l.Open(ctx, "AAPL", 10, 100, 5, 0.5, 0.4))
	require.NoError(t, l.Close(ctx, "AAPL", 90, models.CloseStopLoss))

	assert.Equal(t, 1, l.TradesToday())
	assert.InDelta(t, -100.0, l.DailyPnL(), 1e-9)

	l.ResetDaily()
	assert.Zero(t, l.TradesToday())
	assert.Zero(t, l.DailyPnL())
	// total P&L смену дня переживает
	assert.InDelta(t, -100.0, l.Summary().TotalPnL, 1e-9)
}

func TestOperatorSetCapitalAndReset(t *testing.T) {
	ctx := context.Background()
	l := NewLedger("conservative", ledgerConfig(), nil)
	require.NoError(t, l.Open(ctx, "AAPL", 10, 100, 5, 0.5, 0.4))

	l.SetCapital(5000)
	assert.Equal(t, 5000.0, l.AvailableCapital())

	l.Reset(ctx)
	assert.Equal(t, 10000.0, l.AvailableCapital())
	assert.Empty(t, l.Positions())
	assert.Empty(t, l.Trades())
	assert.Zero(t, l.TradesToday())
}
