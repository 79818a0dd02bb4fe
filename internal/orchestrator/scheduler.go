package orchestrator

import (
	"context"
	"time"
)

// Scheduler задаёт ритм циклов и сигналит смену торгового дня.
type Scheduler interface {
	// Wait блокируется до следующего цикла или отмены контекста.
	Wait(ctx context.Context) error
	// Rollover отдаёт сигнал ровно один раз на смену дня.
	Rollover() <-chan time.Time
}

// IntervalScheduler — фиксированный интервал между циклами плюс таймер
// на локальную полночь для дневного сброса.
type IntervalScheduler struct {
	interval time.Duration
	loc      *time.Location
	rollCh   chan time.Time
}

func NewIntervalScheduler(interval time.Duration) *IntervalScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &IntervalScheduler{
		interval: interval,
		loc:      time.Local,
		rollCh:   make(chan time.Time, 1),
	}
}

func (s *IntervalScheduler) Wait(ctx context.Context) error {
	t := time.NewTimer(s.interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *IntervalScheduler) Rollover() <-chan time.Time {
	return s.rollCh
}

// RunRollover взводит таймер на ближайшую полночь и шлёт сигнал в Rollover.
// Запускается отдельной горутиной из fx-хука.
func (s *IntervalScheduler) RunRollover(ctx context.Context) {
	for {
		now := time.Now().In(s.loc)
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc).Add(24 * time.Hour)

		t := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case at := <-t.C:
			select {
			case s.rollCh <- at:
			default:
			}
		}
	}
}
