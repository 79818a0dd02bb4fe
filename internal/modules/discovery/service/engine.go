package service

import (
	"context"
	"time"

	"trade_agent/internal/models"
	"trade_agent/pkg/logger"
)

// Engine обходит вселенную символов и собирает кандидатов на сделку.
// Ошибка по одному символу не роняет весь проход: символ пропускается
// до следующего цикла.
type Engine struct {
	universe  []string
	quotes    QuoteSource
	sentiment SentimentSource
	news      NewsSource
	technical TechnicalSource

	now func() time.Time
}

func NewEngine(
	universe []string,
	quotes QuoteSource,
	sentiment SentimentSource,
	news NewsSource,
	technical TechnicalSource,
) *Engine {
	return &Engine{
		universe:  universe,
		quotes:    quotes,
		sentiment: sentiment,
		news:      news,
		technical: technical,
		now:       time.Now,
	}
}

// FindOpportunities — один shared-вызов discovery на цикл.
func (e *Engine) FindOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	out := make([]models.Opportunity, 0, len(e.universe))
	for _, symbol := range e.universe {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		q, err := e.quotes.Quote(ctx, symbol)
		if err != nil {
			logger.Warn("discovery: quote %s: %v", symbol, err)
			continue
		}
		sent, err := e.sentiment.Sentiment(ctx, symbol)
		if err != nil {
			logger.Warn("discovery: sentiment %s: %v", symbol, err)
			continue
		}
		news, err := e.news.News(ctx, symbol)
		if err != nil {
			logger.Warn("discovery: news %s: %v", symbol, err)
			continue
		}
		tech, err := e.technical.Technical(ctx, symbol)
		if err != nil {
			logger.Warn("discovery: technical %s: %v", symbol, err)
			continue
		}

		out = append(out, models.Opportunity{
			Symbol:         symbol,
			CurrentPrice:   q.Price,
			VolumeRatio:    q.VolumeRatio,
			Volatility:     q.Volatility,
			MarketCap:      q.MarketCap,
			SentimentScore: sent,
			NewsScore:      news,
			TechnicalScore: tech,
			DiscoveredAt:   e.now(),
		})
	}
	return out, nil
}
