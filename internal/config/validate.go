package config

import (
	"fmt"
	"strings"

	"churn-feature-lab/internal/aggregate"
	"churn-feature-lab/internal/domain"
)

// ConfigurationError reports every violation found in one pass. It is
// fatal to the whole run: a broken configuration is not a data problem.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration (%d problems): %s",
		len(e.Problems), strings.Join(e.Problems, "; "))
}

// knownStreams are the child record sources the engine consumes.
var knownStreams = map[string]bool{
	domain.StreamTransactions: true,
	domain.StreamValuations:   true,
}

// Validate checks the whole configuration and returns a
// *ConfigurationError listing every violation, or nil.
func (c *Config) Validate() error {
	var problems []string

	if c.RunDate == "" {
		problems = append(problems, "run_date is required")
	} else if _, err := c.ParsedRunDate(); err != nil {
		problems = append(problems, fmt.Sprintf("run_date %q is not a YYYY-MM-DD date", c.RunDate))
	}

	if c.Workers < 0 {
		problems = append(problems, fmt.Sprintf("workers must be >= 0, got %d", c.Workers))
	}

	if len(c.Windows) == 0 {
		problems = append(problems, "at least one window is required")
	}
	windowNames := make(map[string]bool, len(c.Windows))
	for _, w := range c.Windows {
		if w.Name == "" {
			problems = append(problems, "window with empty name")
			continue
		}
		if windowNames[w.Name] {
			problems = append(problems, fmt.Sprintf("duplicate window %q", w.Name))
		}
		windowNames[w.Name] = true
		if w.Days <= 0 {
			problems = append(problems, fmt.Sprintf("window %q length must be positive, got %d days", w.Name, w.Days))
		}
	}

	if len(c.Aggregates) == 0 {
		problems = append(problems, "at least one aggregate spec is required")
	}
	// Each (stream, field, op, window) combination maps to one output
	// column; a repeat would emit duplicate column names.
	seenCols := make(map[string]bool)
	for i, spec := range c.Aggregates {
		if !knownStreams[spec.Stream] {
			problems = append(problems, fmt.Sprintf("aggregates[%d]: unknown stream %q", i, spec.Stream))
		}
		if spec.Field == "" {
			problems = append(problems, fmt.Sprintf("aggregates[%d]: field is required", i))
		}
		if len(spec.Windows) == 0 {
			problems = append(problems, fmt.Sprintf("aggregates[%d]: at least one window is required", i))
		}
		for _, w := range spec.Windows {
			if !windowNames[w] {
				problems = append(problems, fmt.Sprintf("aggregates[%d]: unknown window %q", i, w))
			}
		}
		if len(spec.Ops) == 0 {
			problems = append(problems, fmt.Sprintf("aggregates[%d]: at least one op is required", i))
		}
		for _, op := range spec.Ops {
			if !aggregate.Op(op).Valid() {
				problems = append(problems, fmt.Sprintf("aggregates[%d]: unknown operator %q", i, op))
			}
		}
		for _, w := range spec.Windows {
			for _, op := range spec.Ops {
				col := ColumnName(spec.Stream, spec.Field, aggregate.Op(op), w)
				if seenCols[col] {
					problems = append(problems, fmt.Sprintf("aggregates[%d]: duplicate column %q", i, col))
				}
				seenCols[col] = true
			}
		}
	}

	// Derived operands must resolve to columns that will exist once
	// aggregates and statics are assembled. Derived features may not
	// reference other derived features: evaluation order would become
	// configuration-dependent.
	operandCols := make(map[string]bool)
	for _, col := range c.AggregateColumns() {
		operandCols[col] = true
	}
	for _, col := range domain.StaticNumericFeatures {
		operandCols[col] = true
	}

	derivedNames := make(map[string]bool, len(c.Derived))
	for i, d := range c.Derived {
		if d.Name == "" {
			problems = append(problems, fmt.Sprintf("derived[%d]: name is required", i))
		}
		if derivedNames[d.Name] {
			problems = append(problems, fmt.Sprintf("derived[%d]: duplicate name %q", i, d.Name))
		}
		derivedNames[d.Name] = true
		if operandCols[d.Name] {
			problems = append(problems, fmt.Sprintf("derived[%d]: name %q collides with an aggregate column", i, d.Name))
		}
		if d.Kind != DerivedRatio && d.Kind != DerivedDelta {
			problems = append(problems, fmt.Sprintf("derived[%d] %q: unknown kind %q", i, d.Name, d.Kind))
		}
		if d.Left == "" || d.Right == "" {
			problems = append(problems, fmt.Sprintf("derived[%d] %q: both operands are required", i, d.Name))
			continue
		}
		if !operandCols[d.Left] {
			problems = append(problems, fmt.Sprintf("derived[%d] %q: left operand %q is not a configured column", i, d.Name, d.Left))
		}
		if !operandCols[d.Right] {
			problems = append(problems, fmt.Sprintf("derived[%d] %q: right operand %q is not a configured column", i, d.Name, d.Right))
		}
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}
