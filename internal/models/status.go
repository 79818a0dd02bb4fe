package models

import "time"

// PortfolioSummary — снимок состояния портфеля одной стратегии.
type PortfolioSummary struct {
	Capital        float64   `json:"capital"`
	TotalPnL       float64   `json:"total_pnl"`
	DailyPnL       float64   `json:"daily_pnl"`
	PositionsCount int       `json:"positions_count"`
	TradesToday    int       `json:"trades_today"`
	Timestamp      time.Time `json:"timestamp"`
}

// CycleReport — типизированный итог шага стратегии за цикл.
// Ошибки собираются здесь и попадают в статус, а не глотаются.
type CycleReport struct {
	Strategy   string               `json:"strategy"`
	Ranked     int                  `json:"ranked"`
	Opened     int                  `json:"opened"`
	Closed     int                  `json:"closed"`
	Rejections map[RejectReason]int `json:"rejections,omitempty"`
	Skipped    []string             `json:"skipped,omitempty"` // символы без цены в этом цикле
	Errors     []string             `json:"errors,omitempty"`
	At         time.Time            `json:"at"`
}

func (r *CycleReport) Reject(reason RejectReason) {
	if r.Rejections == nil {
		r.Rejections = make(map[RejectReason]int)
	}
	r.Rejections[reason]++
}

func (r *CycleReport) AddError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

// StrategyStatus отдаётся презентационному слою.
type StrategyStatus struct {
	IsActive           bool         `json:"is_active"`
	Capital            float64      `json:"capital"`
	TotalPnL           float64      `json:"total_pnl"`
	DailyPnL           float64      `json:"daily_pnl"`
	PositionsCount     int          `json:"positions_count"`
	TradesToday        int          `json:"trades_today"`
	OpportunitiesCount int          `json:"opportunities_count"`
	InitError          string       `json:"init_error,omitempty"`
	LastCycle          *CycleReport `json:"last_cycle,omitempty"`
}

type Status struct {
	IsRunning  bool                      `json:"is_running"`
	Strategies map[string]StrategyStatus `json:"strategies"`
}
