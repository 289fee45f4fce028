// Package main provides the ingest entry point: applies schema
// migrations and seeds the entity master, transactions, and valuation
// snapshots into the backing stores.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"churn-feature-lab/internal/fixtures"
	"churn-feature-lab/internal/ingestion"
	"churn-feature-lab/internal/storage"
	chstore "churn-feature-lab/internal/storage/clickhouse"
	"churn-feature-lab/internal/storage/memory"
	"churn-feature-lab/internal/storage/migrations"
	pgstore "churn-feature-lab/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	transactionsCSV := flag.String("transactions-csv", "", "Path to a transaction extract (default: built-in fixtures)")
	valuationsCSV := flag.String("valuations-csv", "", "Path to a valuation snapshot extract")
	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling...", sig)
		cancel()
	}()

	var (
		entityStore  storage.EntityStore
		accountStore storage.AccountStore
		txnStore     storage.TransactionStore
		valStore     storage.ValuationStore
	)

	if *useMemory {
		logger.Println("Using in-memory storage")
		entityStore = memory.NewEntityStore()
		accountStore = memory.NewAccountStore()
		txnStore = memory.NewTransactionStore()
		valStore = memory.NewValuationStore()
	} else {
		if *postgresDSN == "" || *clickhouseDSN == "" {
			logger.Fatal("-postgres-dsn and -clickhouse-dsn are required (or pass -use-memory)")
		}

		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("PostgreSQL migrations failed: %v", err)
		}
		logger.Println("PostgreSQL migrations applied")

		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("ClickHouse connection failed: %v", err)
		}
		defer conn.Close()

		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			logger.Fatalf("ClickHouse migrations failed: %v", err)
		}
		logger.Println("ClickHouse migrations applied")

		entityStore = pgstore.NewEntityStore(pool)
		accountStore = pgstore.NewAccountStore(pool)
		txnStore = pgstore.NewTransactionStore(pool)
		valStore = chstore.NewValuationStore(conn)
	}

	if *transactionsCSV == "" && *valuationsCSV == "" {
		if err := fixtures.Load(ctx, entityStore, accountStore, txnStore, valStore); err != nil {
			logger.Fatalf("Seeding failed: %v", err)
		}
		logger.Println("Fixture seeding completed")
		return
	}

	loader := ingestion.NewLoader(txnStore, valStore)

	if *transactionsCSV != "" {
		result, err := loadExtract(ctx, *transactionsCSV, loader.LoadTransactions)
		if err != nil {
			logger.Fatalf("Transaction extract failed: %v", err)
		}
		logger.Printf("Transactions loaded: %d rows (%d generated ids)", result.Loaded, result.GeneratedID)
	}

	if *valuationsCSV != "" {
		result, err := loadExtract(ctx, *valuationsCSV, loader.LoadValuations)
		if err != nil {
			logger.Fatalf("Valuation extract failed: %v", err)
		}
		logger.Printf("Valuations loaded: %d rows (%d generated ids)", result.Loaded, result.GeneratedID)
	}
}

func loadExtract(
	ctx context.Context,
	path string,
	load func(context.Context, io.Reader) (*ingestion.LoadResult, error),
) (*ingestion.LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return load(ctx, f)
}
