package scoring

import (
	"sort"

	"trade_agent/internal/helper"
	"trade_agent/internal/models"
)

const (
	// Референсная капитализация для нормировки риска.
	capRef = 1e9

	// Дефолты на случай отсутствующих данных от источников.
	defaultVolumeRatio = 1.0
	defaultVolatility  = 0.2
	defaultMarketCap   = 1e9

	// Эпсилон в знаменателе score: risk_score ∈ [0,1], так что
	// знаменатель гарантированно отделён от нуля.
	scoreEpsilon = 0.1
)

// RiskScore ∈ [0,1]. Выше волатильность, ниже объём, меньше капитализация — выше риск.
func RiskScore(o models.Opportunity) float64 {
	volatility := o.Volatility
	if volatility == 0 {
		volatility = defaultVolatility
	}
	volumeRatio := o.VolumeRatio
	if volumeRatio == 0 {
		volumeRatio = defaultVolumeRatio
	}
	marketCap := o.MarketCap
	if marketCap == 0 {
		marketCap = defaultMarketCap
	}

	risk := volatility * (1 / volumeRatio) * (capRef / marketCap)
	return helper.Clamp(risk, 0, 1)
}

// PotentialReturn — взвешенная сумма сигналов, отрицательный результат
// зажимается в ноль: ранжируем только кандидатов с апсайдом.
func PotentialReturn(o models.Opportunity, w models.ReturnWeights) float64 {
	ret := w.Sentiment*o.SentimentScore + w.Technical*o.TechnicalScore + w.News*o.NewsScore
	if ret < 0 {
		return 0
	}
	return ret
}

// Apply пересчитывает производные поля кандидата под веса стратегии.
func Apply(o *models.Opportunity, w models.ReturnWeights) {
	o.RiskScore = RiskScore(*o)
	o.PotentialReturn = PotentialReturn(*o, w)
	o.Score = o.PotentialReturn / (o.RiskScore + scoreEpsilon)
}

// Rank возвращает копию списка, отсортированную по score по убыванию.
// Сортировка стабильная: при равном score сохраняется порядок discovery.
// Исходный срез общий для всех стратегий и не мутируется.
func Rank(opps []models.Opportunity, w models.ReturnWeights) []models.Opportunity {
	ranked := make([]models.Opportunity, len(opps))
	copy(ranked, opps)
	for i := range ranked {
		Apply(&ranked[i], w)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
