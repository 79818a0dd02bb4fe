package dashboard

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"trade_agent/internal/modules/config"
	"trade_agent/pkg/logger"
)

type Config struct {
	Addr string // например ":8080"
}

func NewConfig(cfg *config.Config) Config {
	host := cfg.Service.Host
	port := cfg.Service.PublicPort
	if port == 0 {
		port = 8080
	}
	return Config{Addr: fmt.Sprintf("%s:%d", host, port)}
}

func RunHTTP(lc fx.Lifecycle, cfg Config, mux *http.ServeMux) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return errors.Wrap(err, "dashboard listen")
			}
			logger.Info("dashboard listening on %s", cfg.Addr)
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("dashboard",
		fx.Provide(
			NewConfig,
			NewMux,
		),
		fx.Invoke(RunHTTP),
	)
}
