// Package main provides the batch pipeline entry point over in-memory
// stores. Executes: resolve → aggregate → assemble → label → report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"churn-feature-lab/internal/config"
	"churn-feature-lab/internal/fixtures"
	"churn-feature-lab/internal/pipeline"
	"churn-feature-lab/internal/reporting"
	"churn-feature-lab/internal/storage/memory"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (default: built-in config)")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling run...\n", sig)
		cancel()
	}()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	entityStore := memory.NewEntityStore()
	accountStore := memory.NewAccountStore()
	txnStore := memory.NewTransactionStore()
	valStore := memory.NewValuationStore()
	featureStore := memory.NewFeatureStore()

	if err := fixtures.Load(ctx, entityStore, accountStore, txnStore, valStore); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading fixtures: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Churn Feature Pipeline ===")
	runner, err := pipeline.New(pipeline.Options{
		Config:           cfg,
		EntityStore:      entityStore,
		TransactionStore: txnStore,
		ValuationStore:   valStore,
		FeatureStore:     featureStore,
		Verbose:          *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	result, err := runner.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Run completed:\n")
	fmt.Printf("  Resolved: %d\n", result.EntitiesResolved)
	fmt.Printf("  Dropped:  %d\n", result.EntitiesDropped)
	fmt.Printf("  Skipped records: %d\n", result.RecordsSkipped)
	fmt.Printf("  Features: %d\n", len(result.Features))

	// Fixed clock for deterministic report output.
	fixedTime := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	gen := reporting.NewGenerator(*outputDir).WithClock(func() time.Time { return fixedTime })

	if err := gen.WriteAll(result, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Reporting error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nPipeline completed successfully:")
	fmt.Printf("  - %s/features.csv\n", *outputDir)
	fmt.Printf("  - %s/diagnostics.csv\n", *outputDir)
	fmt.Printf("  - %s/REPORT.md\n", *outputDir)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default(fixtures.RunDate().Format("2006-01-02"))
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}
