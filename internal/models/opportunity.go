package models

import "time"

// Opportunity — кандидат на сделку в рамках одного цикла.
// Производные поля (RiskScore/PotentialReturn/Score) пересчитываются
// при каждом ранжировании и зависят от весов стратегии.
type Opportunity struct {
	Symbol         string
	CurrentPrice   float64
	VolumeRatio    float64
	Volatility     float64
	TechnicalScore float64
	SentimentScore float64
	NewsScore      float64
	MarketCap      float64
	DiscoveredAt   time.Time

	RiskScore       float64
	PotentialReturn float64
	Score           float64
}
