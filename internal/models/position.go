package models

import "time"

// Position — открытая позиция. Принадлежит леджеру ровно одной стратегии,
// не больше одной открытой позиции на (стратегия, символ).
type Position struct {
	Symbol        string    `json:"symbol"`
	Shares        int       `json:"shares"`
	AvgPrice      float64   `json:"avg_price"`
	CurrentPrice  float64   `json:"current_price"`
	UnrealizedPnL float64   `json:"unrealized_pnl"`
	OpenedAt      time.Time `json:"opened_at"`
}

// TotalValue по текущей цене.
func (p Position) TotalValue() float64 {
	return float64(p.Shares) * p.CurrentPrice
}
