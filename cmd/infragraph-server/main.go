// infragraph-server ingests infrastructure facts from a data directory,
// keeps the dependency graph current as files change, and serves the
// query API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/dd0wney/infragraph/pkg/api"
	"github.com/dd0wney/infragraph/pkg/config"
	"github.com/dd0wney/infragraph/pkg/connectors"
	"github.com/dd0wney/infragraph/pkg/health"
	"github.com/dd0wney/infragraph/pkg/ingest"
	"github.com/dd0wney/infragraph/pkg/intent"
	"github.com/dd0wney/infragraph/pkg/logging"
	"github.com/dd0wney/infragraph/pkg/metrics"
	"github.com/dd0wney/infragraph/pkg/query"
	"github.com/dd0wney/infragraph/pkg/server"
	"github.com/dd0wney/infragraph/pkg/storage"
	"github.com/dd0wney/infragraph/pkg/watch"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	dataDir := flag.String("data", "", "Data directory (overrides config)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	// A .env file is a convenience for local runs; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *port != 0 {
		cfg.Port = *port
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	logger.Info("starting infragraph server",
		logging.String("data_dir", cfg.DataDir),
		logging.String("addr", cfg.Addr()),
	)

	registry := metrics.NewRegistry()
	store := storage.New()
	defer store.Close()

	merger := ingest.NewMerger(store, logger, registry)
	runner := ingest.NewRunner(cfg.DataDir, connectors.DefaultRegistry(), merger, store, logger, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	report, err := runner.RunWithRetry(ctx, cfg.IngestAttempts, cfg.IngestBackoff)
	if err != nil {
		logger.Error("initial ingestion failed", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("initial ingestion complete",
		logging.Int("files", report.FilesSeen),
		logging.Int("nodes", report.Merge.NodesCreated),
		logging.Int("edges", report.Merge.EdgesCreated),
	)

	watcher, err := watch.New(cfg.DataDir, runner, watch.Options{QuietPeriod: cfg.QuietPeriod}, logger, registry)
	if err != nil {
		logger.Error("failed to start watcher", logging.Error(err))
		os.Exit(1)
	}
	go watcher.Run(ctx)
	defer watcher.Stop()

	engine := query.NewEngine(store, logger, registry)

	var classifier intent.Classifier
	if cfg.LLM.Enabled {
		classifier = intent.NewLLMClassifier(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, logger)
		logger.Info("llm classifier enabled", logging.String("model", cfg.LLM.Model))
	}
	responder := intent.NewResponder(classifier, engine, logger)

	checker := health.NewChecker()
	checker.RegisterLiveness("process", func() health.Check {
		return health.Check{Status: health.StatusHealthy}
	})
	checker.RegisterReadiness("store", health.StoreCheck(store))
	checker.RegisterReadiness("ingest", health.IngestCheck(store))

	apiServer := api.NewServer(api.Options{
		Engine:    engine,
		Responder: responder,
		Checker:   checker,
		Store:     store,
		Metrics:   registry,
		Logger:    logger,
	})

	httpServer := server.New(cfg.Addr(), apiServer.Handler(), cfg.ShutdownTimeout, logger)
	go func() {
		<-httpServer.ShutdownChannel()
		cancel()
	}()

	if err := httpServer.Start(); err != nil {
		logger.Error("server failed", logging.Error(err))
		os.Exit(1)
	}
}
