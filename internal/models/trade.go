package models

import "time"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// CloseReason — причина закрытия позиции.
type CloseReason string

const (
	CloseStopLoss   CloseReason = "STOP_LOSS"
	CloseTakeProfit CloseReason = "TAKE_PROFIT"
	CloseOperator   CloseReason = "OPERATOR"
)

// TradeRecord — append-only запись журнала сделок. После создания не меняется.
type TradeRecord struct {
	Symbol     string      `json:"symbol"`
	Shares     int         `json:"shares"`
	Price      float64     `json:"price"`
	Total      float64     `json:"total"`
	Side       Side        `json:"side"`
	Timestamp  time.Time   `json:"timestamp"`
	Score      float64     `json:"opp_score"`  // score кандидата на момент решения
	RiskScore  float64     `json:"risk_score"` // risk_score на момент решения
	Commission float64     `json:"commission"`
	Reason     CloseReason `json:"reason,omitempty"` // только для SELL
}

// RejectReason — ожидаемые отказы admission-контроля. Это не ошибки.
type RejectReason string

const (
	RejectInsufficientCapital RejectReason = "INSUFFICIENT_CAPITAL"
	RejectDuplicatePosition   RejectReason = "DUPLICATE_POSITION"
	RejectRiskTooHigh         RejectReason = "RISK_TOO_HIGH"
	RejectDailyLossLimit      RejectReason = "DAILY_LOSS_LIMIT"
	RejectScoreTooLow         RejectReason = "SCORE_TOO_LOW"
	RejectNegligibleSize      RejectReason = "NEGLIGIBLE_SIZE"
)
