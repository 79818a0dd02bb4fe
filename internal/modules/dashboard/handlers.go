package dashboard

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"

	"trade_agent/internal/orchestrator"
	"trade_agent/pkg/logger"
)

func NewMux(o *orchestrator.Orchestrator) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: торговый цикл запущен
		if !o.Status().IsRunning {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, o.Status())
	})

	mux.HandleFunc("GET /api/strategies", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, o.Status().Strategies)
	})

	mux.HandleFunc("GET /api/strategies/{name}/positions", func(w http.ResponseWriter, r *http.Request) {
		pos, err := o.Positions(r.PathValue("name"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, pos)
	})

	mux.HandleFunc("GET /api/strategies/{name}/trades", func(w http.ResponseWriter, r *http.Request) {
		trades, err := o.Trades(r.PathValue("name"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, trades)
	})

	mux.HandleFunc("POST /api/strategies/{name}/balance", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Amount float64 `json:"amount"`
		}
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req.Amount < 0 {
			http.Error(w, "amount must be non-negative", http.StatusBadRequest)
			return
		}
		if err := o.SetBalance(r.PathValue("name"), req.Amount); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/strategies/{name}/reset", func(w http.ResponseWriter, r *http.Request) {
		if err := o.Reset(r.Context(), r.PathValue("name")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /ws", serveWS(o))

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := sonic.ConfigDefault.NewEncoder(w).Encode(v); err != nil {
		logger.Error("dashboard: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, orchestrator.ErrUnknownStrategy) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
