package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"churn-feature-lab/internal/domain"
)

const sampleYAML = `
run_date: "2024-09-30"
workers: 2
windows:
  - name: 30d
    days: 30
  - name: 90d
    days: 90
aggregates:
  - stream: transactions
    field: amount
    windows: [30d, 90d]
    ops: [count, sum, net_ratio]
derived:
  - name: txn_count_ratio_30d_90d
    kind: ratio
    left: transactions_amount_count_30d
    right: transactions_amount_count_90d
postgres:
  dsn: "postgres://localhost:5432/churn"
clickhouse:
  dsn: "clickhouse://localhost:9000/churn"
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runDate, err := cfg.ParsedRunDate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !runDate.Equal(domain.Date(2024, time.September, 30)) {
		t.Errorf("unexpected run date %v", runDate)
	}
	if cfg.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Workers)
	}
	if len(cfg.Windows) != 2 || cfg.Windows[1].Days != 90 {
		t.Errorf("unexpected windows: %v", cfg.Windows)
	}
	if len(cfg.Derived) != 1 || cfg.Derived[0].Kind != DerivedRatio {
		t.Errorf("unexpected derived specs: %v", cfg.Derived)
	}
	if cfg.Postgres.DSN == "" || cfg.Clickhouse.DSN == "" {
		t.Error("store DSNs must be read")
	}
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	broken := "run_date: \"2024-09-30\"\nwindows: []\naggregates: []\n"
	if err := os.WriteFile(path, []byte(broken), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDomainWindows(t *testing.T) {
	cfg := Default("2024-09-30")
	windows := cfg.DomainWindows()
	if len(windows) != 4 {
		t.Fatalf("expected 4 windows, got %d", len(windows))
	}
	if windows[0].Name != "30d" || windows[0].Days != 30 {
		t.Errorf("unexpected first window: %v", windows[0])
	}
}
