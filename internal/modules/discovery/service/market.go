package service

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
)

// Quote — рыночный снимок по символу.
type Quote struct {
	Price       float64
	VolumeRatio float64
	Volatility  float64
	MarketCap   float64
}

// QuoteSource отдаёт котировки. Продовая реализация ходит во внешний
// маркет-дата API, SimQuoteSource живёт целиком в памяти.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
}

// SimQuoteSource — детерминированный источник котировок для paper-трейдинга.
// База цены выводится из символа, вокруг неё гуляет random walk.
type SimQuoteSource struct {
	mu   sync.Mutex
	rnd  *rand.Rand
	last map[string]float64
}

func NewSimQuoteSource(seed int64) *SimQuoteSource {
	return &SimQuoteSource{
		rnd:  rand.New(rand.NewSource(seed)),
		last: make(map[string]float64),
	}
}

func basePrice(symbol string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	// цены в диапазоне [20, 520)
	return 20 + float64(h.Sum32()%50000)/100
}

func (s *SimQuoteSource) Quote(_ context.Context, symbol string) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.last[symbol]
	if !ok {
		price = basePrice(symbol)
	}
	// шаг random walk до ±1.5%
	price = price * (1 + (s.rnd.Float64()*2-1)*0.015)
	price = math.Round(price*100) / 100
	s.last[symbol] = price

	return Quote{
		Price:       price,
		VolumeRatio: 0.5 + s.rnd.Float64()*2.5,
		Volatility:  0.05 + s.rnd.Float64()*0.45,
		MarketCap:   1e8 + s.rnd.Float64()*2e11,
	}, nil
}

// Price отдаёт текущую цену для mark-to-market прохода.
func (s *SimQuoteSource) Price(ctx context.Context, symbol string) (float64, error) {
	q, err := s.Quote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return q.Price, nil
}
