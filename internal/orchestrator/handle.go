package orchestrator

import (
	"trade_agent/internal/execution"
	"trade_agent/internal/models"
	"trade_agent/internal/portfolio"
)

// Handle связывает всё состояние одной стратегии: конфиг, леджер,
// симулятор и флаг активности. Никаких глобальных реестров, все хэндлы
// принадлежат оркестратору.
type Handle struct {
	Name   string
	Cfg    models.StrategyConfig
	Ledger *portfolio.Ledger
	Sim    *execution.Simulator

	// Active=false: стратегия не прошла инициализацию. Из циклов она
	// исключена, но в статусе остаётся (degraded).
	Active  bool
	InitErr string
}

func newHandle(name string, cfg models.StrategyConfig, store portfolio.Store, fill execution.FillPricer) *Handle {
	return &Handle{
		Name:   name,
		Cfg:    cfg,
		Ledger: portfolio.NewLedger(name, cfg, store),
		Sim:    execution.NewSimulator(cfg, fill, true),
		Active: true,
	}
}

func inactiveHandle(name, reason string) *Handle {
	return &Handle{Name: name, InitErr: reason}
}
