package dashboard

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"trade_agent/internal/orchestrator"
	"trade_agent/pkg/logger"
)

const (
	statusPushInterval = 5 * time.Second
	writeTimeout       = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// дашборд отдаётся с другого origin в dev-режиме
	CheckOrigin: func(r *http.Request) bool { return true },
}

// serveWS пушит статус подписчику раз в statusPushInterval.
// Клиент ничего не шлёт, входящие сообщения читаются только ради
// обнаружения закрытия.
func serveWS(o *orchestrator.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("ws upgrade: %v", err)
			return
		}
		defer func() { _ = conn.Close() }()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		t := time.NewTicker(statusPushInterval)
		defer t.Stop()

		for {
			payload, err := sonic.Marshal(o.Status())
			if err != nil {
				logger.Error("ws: marshal status: %v", err)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

			select {
			case <-closed:
				return
			case <-r.Context().Done():
				return
			case <-t.C:
			}
		}
	}
}
