package service

import (
	"context"
	"math/rand"
	"sync"
)

// SentimentSource — оценка сентимента по символу в [-1, 1].
type SentimentSource interface {
	Sentiment(ctx context.Context, symbol string) (float64, error)
}

// NewsSource — оценка новостного фона по символу в [-1, 1].
type NewsSource interface {
	News(ctx context.Context, symbol string) (float64, error)
}

// TechnicalSource — техническая оценка по символу в [-1, 1].
type TechnicalSource interface {
	Technical(ctx context.Context, symbol string) (float64, error)
}

// SimSignals — заглушка всех трёх источников на одном seeded-генераторе.
// Продовые реализации будут ходить в соответствующие API, интерфейсы
// те же.
type SimSignals struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSimSignals(seed int64) *SimSignals {
	return &SimSignals{rnd: rand.New(rand.NewSource(seed))}
}

func (s *SimSignals) draw(scale float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (s.rnd.Float64()*2 - 1) * scale
}

func (s *SimSignals) Sentiment(context.Context, string) (float64, error) {
	return s.draw(0.5), nil
}

func (s *SimSignals) News(context.Context, string) (float64, error) {
	return s.draw(0.3), nil
}

func (s *SimSignals) Technical(context.Context, string) (float64, error) {
	return s.draw(1.0), nil
}
