// Package main provides the unified service: runs the feature pipeline
// on a schedule against the backing stores, persists feature records,
// writes reports, and exposes Prometheus metrics plus a status endpoint.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"churn-feature-lab/internal/config"
	"churn-feature-lab/internal/fixtures"
	"churn-feature-lab/internal/observability"
	"churn-feature-lab/internal/pipeline"
	"churn-feature-lab/internal/reporting"
	"churn-feature-lab/internal/storage"
	chstore "churn-feature-lab/internal/storage/clickhouse"
	"churn-feature-lab/internal/storage/memory"
	"churn-feature-lab/internal/storage/migrations"
	pgstore "churn-feature-lab/internal/storage/postgres"
)

// Server runs scheduled pipeline passes and serves status over HTTP.
type Server struct {
	cfg       *config.Config
	runner    *pipeline.Runner
	generator *reporting.Generator
	logger    *log.Logger

	mu         sync.Mutex
	running    bool
	lastRun    time.Time
	lastResult *pipeline.Result
	runs       int
	failures   int
}

func main() {
	configPath := flag.String("config", "", "Path to YAML config (default: built-in config)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage with seeded fixtures")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated reports")
	httpAddr := flag.String("http-addr", ":8080", "HTTP listen address")
	runInterval := flag.Duration("run-interval", 24*time.Hour, "Interval between pipeline runs")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatalf("Config error: %v", err)
	}

	stores, cleanup, err := connectStores(ctx, logger, *useMemory, *postgresDSN, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("Storage error: %v", err)
	}
	defer cleanup()

	if *useMemory {
		if err := fixtures.Load(ctx, stores.entities, stores.accounts, stores.transactions, stores.valuations); err != nil {
			logger.Fatalf("Seeding failed: %v", err)
		}
	}

	metrics := observability.NewMetrics("")
	runner, err := pipeline.New(pipeline.Options{
		Config:           cfg,
		EntityStore:      stores.entities,
		TransactionStore: stores.transactions,
		ValuationStore:   stores.valuations,
		FeatureStore:     stores.features,
		Metrics:          metrics,
		Verbose:          *verbose,
	})
	if err != nil {
		logger.Fatalf("Pipeline error: %v", err)
	}

	srv := &Server{
		cfg:       cfg,
		runner:    runner,
		generator: reporting.NewGenerator(*outputDir),
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", srv.handleStatus)

	httpSrv := &http.Server{Addr: *httpAddr, Handler: mux}
	go func() {
		logger.Printf("HTTP server listening on %s", *httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("HTTP server error: %v", err)
		}
	}()

	srv.loop(ctx, *runInterval)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP shutdown error: %v", err)
	}
	logger.Printf("Stopped after %d runs (%d failed)", srv.runs, srv.failures)
}

// loop runs one pipeline pass immediately, then on every tick until
// the context is cancelled.
func (s *Server) loop(ctx context.Context, interval time.Duration) {
	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Server) runOnce(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Println("Previous run still in progress, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.logger.Println("Starting pipeline run")
	result, err := s.runner.Run(ctx)

	s.mu.Lock()
	s.lastRun = time.Now().UTC()
	s.runs++
	if err != nil {
		s.failures++
	} else {
		s.lastResult = result
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Printf("Pipeline run failed: %v", err)
		return
	}

	if err := s.generator.WriteAll(result, s.cfg); err != nil {
		s.logger.Printf("Reporting failed: %v", err)
		return
	}
	s.logger.Printf("Run completed: %d features, %d dropped, %d skipped records",
		len(result.Features), result.EntitiesDropped, result.RecordsSkipped)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	status := map[string]any{
		"running":  s.running,
		"runs":     s.runs,
		"failures": s.failures,
		"run_date": s.cfg.RunDate,
	}
	if !s.lastRun.IsZero() {
		status["last_run"] = s.lastRun.Format(time.RFC3339)
	}
	if s.lastResult != nil {
		status["features"] = len(s.lastResult.Features)
		status["entities_resolved"] = s.lastResult.EntitiesResolved
		status["entities_dropped"] = s.lastResult.EntitiesDropped
		status["records_skipped"] = s.lastResult.RecordsSkipped
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// batchStores groups the store handles one pipeline pass needs.
type batchStores struct {
	entities     storage.EntityStore
	accounts     storage.AccountStore
	transactions storage.TransactionStore
	valuations   storage.ValuationStore
	features     storage.FeatureStore
}

func connectStores(ctx context.Context, logger *log.Logger, useMemory bool, postgresDSN, clickhouseDSN string) (*batchStores, func(), error) {
	if useMemory {
		logger.Println("Using in-memory storage")
		return &batchStores{
			entities:     memory.NewEntityStore(),
			accounts:     memory.NewAccountStore(),
			transactions: memory.NewTransactionStore(),
			valuations:   memory.NewValuationStore(),
			features:     memory.NewFeatureStore(),
		}, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, err
	}

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	conn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		pool.Close()
		conn.Close()
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		conn.Close()
	}
	return &batchStores{
		entities:     pgstore.NewEntityStore(pool),
		accounts:     pgstore.NewAccountStore(pool),
		transactions: pgstore.NewTransactionStore(pool),
		valuations:   chstore.NewValuationStore(conn),
		features:     chstore.NewFeatureStore(conn),
	}, cleanup, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default(time.Now().UTC().Format("2006-01-02"))
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}
