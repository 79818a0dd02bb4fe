package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"trade_agent/internal/models"
)

// statusText — плоский текстовый снапшот для Telegram-команды /status.
func statusText(st models.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "running: %v\n", st.IsRunning)

	names := make([]string, 0, len(st.Strategies))
	for name := range st.Strategies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := st.Strategies[name]
		if !s.IsActive {
			fmt.Fprintf(&b, "%s: inactive (%s)\n", name, s.InitError)
			continue
		}
		fmt.Fprintf(&b, "%s: capital %.2f, pnl %.2f (day %.2f), positions %d, trades today %d\n",
			name, s.Capital, s.TotalPnL, s.DailyPnL, s.PositionsCount, s.TradesToday)
	}
	return b.String()
}
