package models

import "fmt"

// ReturnWeights — веса сигналов при расчёте potential_return.
type ReturnWeights struct {
	Sentiment float64 `yaml:"sentiment" mapstructure:"sentiment"`
	Technical float64 `yaml:"technical" mapstructure:"technical"`
	News      float64 `yaml:"news" mapstructure:"news"`
}

func DefaultReturnWeights() ReturnWeights {
	return ReturnWeights{Sentiment: 0.3, Technical: 0.4, News: 0.3}
}

// StrategyConfig неизменяем после старта стратегии.
type StrategyConfig struct {
	StartingCapital   float64 `yaml:"starting_capital" mapstructure:"starting_capital"`
	RiskPercentage    float64 `yaml:"risk_percentage" mapstructure:"risk_percentage"`
	MaxPositionPct    float64 `yaml:"max_position_pct" mapstructure:"max_position_pct"`
	StopLossPct       float64 `yaml:"stop_loss_pct" mapstructure:"stop_loss_pct"`
	TakeProfitPct     float64 `yaml:"take_profit_pct" mapstructure:"take_profit_pct"`
	MaxDailyTrades    int     `yaml:"max_daily_trades" mapstructure:"max_daily_trades"`
	MaxDailyLoss      float64 `yaml:"max_daily_loss" mapstructure:"max_daily_loss"`
	MinScoreThreshold float64 `yaml:"min_score_threshold" mapstructure:"min_score_threshold"`
	MaxRiskScore      float64 `yaml:"max_risk_score" mapstructure:"max_risk_score"`

	Weights *ReturnWeights `yaml:"weights,omitempty" mapstructure:"weights"`
}

// ReturnWeightsOrDefault — веса из конфига либо дефолтные 0.3/0.4/0.3.
func (c StrategyConfig) ReturnWeightsOrDefault() ReturnWeights {
	if c.Weights == nil {
		return DefaultReturnWeights()
	}
	return *c.Weights
}

func (c StrategyConfig) Validate() error {
	if c.StartingCapital <= 0 {
		return fmt.Errorf("starting_capital must be positive, got %.2f", c.StartingCapital)
	}
	if c.RiskPercentage <= 0 || c.RiskPercentage > 100 {
		return fmt.Errorf("risk_percentage must be in (0,100], got %.2f", c.RiskPercentage)
	}
	if c.MaxPositionPct <= 0 || c.MaxPositionPct > 100 {
		return fmt.Errorf("max_position_pct must be in (0,100], got %.2f", c.MaxPositionPct)
	}
	if c.StopLossPct <= 0 {
		return fmt.Errorf("stop_loss_pct must be positive, got %.2f", c.StopLossPct)
	}
	if c.TakeProfitPct <= 0 {
		return fmt.Errorf("take_profit_pct must be positive, got %.2f", c.TakeProfitPct)
	}
	if c.MaxDailyTrades <= 0 {
		return fmt.Errorf("max_daily_trades must be positive, got %d", c.MaxDailyTrades)
	}
	if c.MaxDailyLoss < 0 {
		return fmt.Errorf("max_daily_loss must be non-negative, got %.2f", c.MaxDailyLoss)
	}
	if c.MaxRiskScore < 0 || c.MaxRiskScore > 1 {
		return fmt.Errorf("max_risk_score must be in [0,1], got %.3f", c.MaxRiskScore)
	}
	if w := c.Weights; w != nil {
		if w.Sentiment < 0 || w.Technical < 0 || w.News < 0 {
			return fmt.Errorf("weights must be non-negative")
		}
	}
	return nil
}
