// Command searchd serves liveness and readiness checks for a managed
// OpenSearch client. It is a minimal host for the searchkit packages.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/searchkit/pkg/config"
	"github.com/dmitrymomot/searchkit/pkg/httpserver"
	"github.com/dmitrymomot/searchkit/pkg/logger"
	"github.com/dmitrymomot/searchkit/pkg/opensearch"
)

func main() {
	configPath := flag.String("config", "", "path to the OpenSearch YAML configuration; env vars override it")
	envFile := flag.String("env", "", "optional .env file loaded before configuration")
	flag.Parse()

	if err := run(context.Background(), *configPath, *envFile); err != nil {
		slog.Error("searchd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, envFile string) error {
	if envFile != "" {
		if err := config.LoadEnv(envFile); err != nil {
			return err
		}
	}

	var logCfg logger.Config
	if err := config.Load(&logCfg); err != nil {
		return err
	}
	log, err := logger.NewFromConfig(logCfg)
	if err != nil {
		return err
	}
	logger.SetAsDefault(log)

	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}
	var searchCfg opensearch.Config
	if err := config.LoadFile(configPath, &searchCfg); err != nil {
		return err
	}

	search, err := opensearch.NewManaged(ctx, &searchCfg, opensearch.WithLogger(log))
	if err != nil {
		return err
	}
	// Stop is idempotent; this releases the client when Run fails early.
	defer func() { _ = search.Stop(context.Background()) }()

	r := chi.NewRouter()
	r.Use(middleware.RealIP, middleware.Recoverer)
	r.Get("/healthz", httpserver.HealthCheckHandler(log))
	r.Get("/readyz", httpserver.HealthCheckHandler(log, search.Healthcheck))

	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithManaged(search),
	)
	return srv.Run(ctx, r)
}
