package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_agent/internal/execution"
	"trade_agent/internal/models"
)

type fakeDiscovery struct {
	opps []models.Opportunity
	err  error
}

func (f *fakeDiscovery) FindOpportunities(context.Context) ([]models.Opportunity, error) {
	return f.opps, f.err
}

type fakePrices struct {
	prices map[string]float64
	err    map[string]error
}

func (f *fakePrices) Price(_ context.Context, symbol string) (float64, error) {
	if err := f.err[symbol]; err != nil {
		return 0, err
	}
	return f.prices[symbol], nil
}

// fakeScheduler тикает по требованию теста.
type fakeScheduler struct {
	ticks chan struct{}
	roll  chan time.Time
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		ticks: make(chan struct{}),
		roll:  make(chan time.Time, 1),
	}
}

func (s *fakeScheduler) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ticks:
		return nil
	}
}

func (s *fakeScheduler) Rollover() <-chan time.Time { return s.roll }

func testStrategyConfig() models.StrategyConfig {
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

func candidate(symbol string, price float64) models.Opportunity {
	return models.Opportunity{
		Symbol:         symbol,
		CurrentPrice:   price,
		VolumeRatio:    2,
		Volatility:     0.3,
		MarketCap:      5e9,
		SentimentScore: 0.5,
		TechnicalScore: 0.5,
		NewsScore:      0.5,
	}
}

func newTestOrchestrator(t *testing.T, cfg models.StrategyConfig, disc Discovery, prices PriceSource) *Orchestrator {
	t.Helper()
	o, err := New(
		map[string]models.StrategyConfig{"main": cfg},
		[]string{"main"},
		nil,
		nil, // без персистентности
		disc,
		prices,
		newFakeScheduler(),
		nil,
		Options{Fill: execution.FixedFill{}},
	)
	require.NoError(t, err)
	return o
}

func TestCycleOpensRankedCandidates(t *testing.T) {
	cfg := testStrategyConfig()
	disc := &fakeDiscovery{opps: []models.Opportunity{
		candidate("AAPL", 50),
		candidate("MSFT", 80),
	}}
	o := newTestOrchestrator(t, cfg, disc, &fakePrices{})

	o.RunCycle(context.Background())

	st := o.Status()
	s := st.Strategies["main"]
	assert.Equal(t, 2, s.PositionsCount)
	assert.Equal(t, 2, s.TradesToday)
	assert.Equal(t, 2, s.OpportunitiesCount)
	require.NotNil(t, s.LastCycle)
	assert.Equal(t, 2, s.LastCycle.Opened)
	assert.Equal(t, 2, s.LastCycle.Ranked)
	assert.Empty(t, s.LastCycle.Errors)
}

func TestMaxDailyTradesOpensOnlyTop(t *testing.T) {
	cfg := testStrategyConfig()
	cfg.MaxDailyTrades = 1
	disc := &fakeDiscovery{opps: []models.Opportunity{
		candidate("X", 50),
		candidate("Y", 50),
		candidate("Z", 50),
	}}
	o := newTestOrchestrator(t, cfg, disc, &fakePrices{})

	o.RunCycle(context.Background())

	pos, err := o.Positions("main")
	require.NoError(t, err)
	require.Len(t, pos, 1)
	assert.Equal(t, "X", pos[0].Symbol)
}

func TestExitFreesCapitalWithinCycle(t *testing.T) {
	cfg := testStrategyConfig()
	disc := &fakeDiscovery{opps: []models.Opportunity{candidate("AAPL", 50)}}
	prices := &fakePrices{prices: map[string]float64{"AAPL": 48}} // -4% < -3% стоп
	o := newTestOrchestrator(t, cfg, disc, prices)

	o.RunCycle(context.Background())
	require.Equal(t, 1, o.Status().Strategies["main"].PositionsCount)

	// второй цикл: стоп закрывает позицию, символ снова доступен для входа
	o.RunCycle(context.Background())

	st := o.Status().Strategies["main"]
	require.NotNil(t, st.LastCycle)
	assert.Equal(t, 1, st.LastCycle.Closed)
	assert.Equal(t, 1, st.LastCycle.Opened)
	assert.Equal(t, 1, st.PositionsCount)
}

func TestPriceErrorSkipsSymbolOnly(t *testing.T) {
	cfg := testStrategyConfig()
	cfg.MaxDailyTrades = 2
	disc := &fakeDiscovery{opps: []models.Opportunity{
		candidate("AAPL", 50),
		candidate("MSFT", 80),
	}}
	prices := &fakePrices{
		prices: map[string]float64{"MSFT": 80},
		err:    map[string]error{"AAPL": errors.New("feed down")},
	}
	o := newTestOrchestrator(t, cfg, disc, prices)

	o.RunCycle(context.Background())
	disc.opps = nil
	o.RunCycle(context.Background())

	st := o.Status().Strategies["main"]
	require.NotNil(t, st.LastCycle)
	assert.Equal(t, []string{"AAPL"}, st.LastCycle.Skipped)
	// обе позиции живы, пропуск цены не закрывает и не валит цикл
	assert.Equal(t, 2, st.PositionsCount)
}

func TestInactiveStrategyInStatus(t *testing.T) {
	o, err := New(
		map[string]models.StrategyConfig{"main": testStrategyConfig()},
		[]string{"main"},
		map[string]string{"broken": "starting_capital must be positive"},
		nil,
		&fakeDiscovery{},
		&fakePrices{},
		newFakeScheduler(),
		nil,
		Options{Fill: execution.FixedFill{}},
	)
	require.NoError(t, err)

	st := o.Status()
	require.Contains(t, st.Strategies, "broken")
	assert.False(t, st.Strategies["broken"].IsActive)
	assert.Equal(t, "starting_capital must be positive", st.Strategies["broken"].InitError)
	assert.True(t, st.Strategies["main"].IsActive)
}

func TestNoStrategiesFailsFast(t *testing.T) {
	_, err := New(nil, nil, nil, nil, &fakeDiscovery{}, &fakePrices{}, newFakeScheduler(), nil, Options{})
	assert.Error(t, err)

	_, err = New(
		nil, nil,
		map[string]string{"broken": "bad config"},
		nil, &fakeDiscovery{}, &fakePrices{}, newFakeScheduler(), nil, Options{},
	)
	assert.Error(t, err)
}

func TestRolloverResetsDailyCounters(t *testing.T) {
	cfg := testStrategyConfig()
	disc := &fakeDiscovery{opps: []models.Opportunity{candidate("AAPL", 50)}}
	sched := newFakeScheduler()
	o, err := New(
		map[string]models.StrategyConfig{"main": cfg},
		[]string{"main"},
		nil, nil, disc, &fakePrices{}, sched, nil,
		Options{Fill: execution.FixedFill{}},
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Run(ctx)
	}()

	// первый цикл идёт сразу после запуска
	require.Eventually(t, func() bool {
		return o.Status().Strategies["main"].TradesToday == 1
	}, time.Second, 5*time.Millisecond)

	sched.roll <- time.Now()
	require.Eventually(t, func() bool {
		return o.Status().Strategies["main"].TradesToday == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("orchestrator did not stop promptly")
	}
	assert.False(t, o.Status().IsRunning)
}

func TestOperatorCommands(t *testing.T) {
	o := newTestOrchestrator(t, testStrategyConfig(), &fakeDiscovery{}, &fakePrices{})

	require.NoError(t, o.SetBalance("main", 2500))
	assert.Equal(t, 2500.0, o.Status().Strategies["main"].Capital)

	require.NoError(t, o.Reset(context.Background(), "main"))
	assert.Equal(t, 10000.0, o.Status().Strategies["main"].Capital)

	assert.ErrorIs(t, o.SetBalance("ghost", 1), ErrUnknownStrategy)
	assert.ErrorIs(t, o.Reset(context.Background(), "ghost"), ErrUnknownStrategy)
}
