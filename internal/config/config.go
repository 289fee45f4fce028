// Package config defines the pipeline configuration: lookback windows,
// per-stream aggregate specs, derived features, and store settings.
// Validation is fail-fast: a broken configuration aborts the run before
// any per-entity work begins.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"churn-feature-lab/internal/aggregate"
	"churn-feature-lab/internal/domain"
)

// WindowSpec names a fixed-length lookback interval.
type WindowSpec struct {
	Name string `yaml:"name"`
	Days int    `yaml:"days"`
}

// AggregateSpec requests a set of operators over one numeric field of
// one stream, evaluated in each listed window.
type AggregateSpec struct {
	Stream  string   `yaml:"stream"`
	Field   string   `yaml:"field"`
	Windows []string `yaml:"windows"`
	Ops     []string `yaml:"ops"`
}

// Derived feature kinds.
const (
	DerivedRatio = "ratio" // left / right
	DerivedDelta = "delta" // left - right
)

// DerivedSpec combines two already-assembled feature columns into a new
// one. Operands must name configured columns; this is checked up front.
type DerivedSpec struct {
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"`
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

// PostgresConfig holds the entity/account/transaction source settings.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// ClickhouseConfig holds the valuation source and feature sink settings.
type ClickhouseConfig struct {
	DSN string `yaml:"dsn"`
}

// Config is the full pipeline configuration.
type Config struct {
	RunDate    string           `yaml:"run_date"` // YYYY-MM-DD
	Workers    int              `yaml:"workers"`
	Windows    []WindowSpec     `yaml:"windows"`
	Aggregates []AggregateSpec  `yaml:"aggregates"`
	Derived    []DerivedSpec    `yaml:"derived"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Clickhouse ClickhouseConfig `yaml:"clickhouse"`
}

// Load reads a YAML config file and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParsedRunDate returns the run date as a UTC midnight time.
func (c *Config) ParsedRunDate() (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", c.RunDate, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse run_date %q: %w", c.RunDate, err)
	}
	return t, nil
}

// DomainWindows converts window specs to domain windows, preserving
// configured order.
func (c *Config) DomainWindows() []domain.Window {
	out := make([]domain.Window, len(c.Windows))
	for i, w := range c.Windows {
		out[i] = domain.Window{Name: w.Name, Days: w.Days}
	}
	return out
}

// Window returns the named window spec.
func (c *Config) Window(name string) (WindowSpec, bool) {
	for _, w := range c.Windows {
		if w.Name == name {
			return w, true
		}
	}
	return WindowSpec{}, false
}

// ColumnName builds the flat feature column name for one
// (stream, field, op, window) combination.
func ColumnName(stream, field string, op aggregate.Op, window string) string {
	return fmt.Sprintf("%s_%s_%s_%s", stream, field, op, window)
}

// AggregateColumns returns every aggregate feature column in emit
// order: spec order, then window order, then op order.
func (c *Config) AggregateColumns() []string {
	var cols []string
	for _, spec := range c.Aggregates {
		for _, w := range spec.Windows {
			for _, op := range spec.Ops {
				cols = append(cols, ColumnName(spec.Stream, spec.Field, aggregate.Op(op), w))
			}
		}
	}
	return cols
}

// NumericColumns returns all numeric feature columns in emit order:
// aggregates, statics, derived.
func (c *Config) NumericColumns() []string {
	cols := c.AggregateColumns()
	cols = append(cols, domain.StaticNumericFeatures...)
	for _, d := range c.Derived {
		cols = append(cols, d.Name)
	}
	return cols
}

// CategoricalColumns returns all categorical feature columns.
func (c *Config) CategoricalColumns() []string {
	return append([]string(nil), domain.StaticCategoricalFeatures...)
}
