package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"go.uber.org/fx"

	"trade_agent/internal/modules/config"
	"trade_agent/internal/modules/dashboard"
	"trade_agent/internal/modules/discovery"
	"trade_agent/internal/modules/postgres"
	"trade_agent/internal/orchestrator"
	"trade_agent/pkg/logger"
	"trade_agent/pkg/tracing"
)

func main() {
	logger.SetServiceName("trade_agent")
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}

	if host := os.Getenv("JAEGER_HOST"); host != "" {
		port, _ := strconv.Atoi(os.Getenv("JAEGER_PORT"))
		if port == 0 {
			port = 6831
		}
		tracing.SetServiceName("trade_agent")
		_, closeTracer, err := tracing.InitTracer(tracing.Config{Host: host, Port: port})
		if err != nil {
			log.Fatal(err)
		}
		defer closeTracer()
	}

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		discovery.Module(),
		orchestrator.Module(),
		dashboard.Module(),
	)
	app.Run()
}
