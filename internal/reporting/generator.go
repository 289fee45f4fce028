// Package reporting renders the feature table and run summary for the
// downstream training collaborator.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"churn-feature-lab/internal/config"
	"churn-feature-lab/internal/diagnostics"
	"churn-feature-lab/internal/pipeline"
)

// Generator writes run outputs to a directory.
type Generator struct {
	outputDir string
	now       func() time.Time // injectable clock for deterministic output
}

// NewGenerator creates a report generator.
func NewGenerator(outputDir string) *Generator {
	return &Generator{
		outputDir: outputDir,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// BuildReport summarizes a pipeline result.
func (g *Generator) BuildReport(result *pipeline.Result, cfg *config.Config) *Report {
	report := &Report{
		GeneratedAt:        g.now(),
		RunDate:            cfg.RunDate,
		EntitiesEmitted:    result.EntitiesResolved,
		EntitiesDropped:    result.EntitiesDropped,
		RecordsSkipped:     result.RecordsSkipped,
		NumericColumns:     len(cfg.NumericColumns()),
		CategoricalColumns: len(cfg.CategoricalColumns()),
		DropsByReason:      make(map[diagnostics.Reason]int),
		Diagnostics:        result.Diagnostics,
	}

	for _, f := range result.Features {
		if f.ChurnLabel {
			report.ChurnedCount++
		} else {
			report.ActiveCount++
		}
		if f.AccountClosed {
			report.AccountClosedCount++
		}
	}

	for _, e := range result.Diagnostics {
		report.DropsByReason[e.Reason]++
	}

	return report
}

// WriteAll renders and writes features.csv, diagnostics.csv and
// REPORT.md into the output directory.
func (g *Generator) WriteAll(result *pipeline.Result, cfg *config.Config) error {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := map[string]string{
		"features.csv":    RenderFeatureCSV(result.Features, cfg),
		"diagnostics.csv": RenderDiagnosticsCSV(result.Diagnostics),
		"REPORT.md":       RenderMarkdown(g.BuildReport(result, cfg)),
	}

	for name, content := range files {
		path := filepath.Join(g.outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	return nil
}

// reasonOrder returns the report's reasons sorted for stable rendering.
func reasonOrder(r *Report) []diagnostics.Reason {
	reasons := make([]diagnostics.Reason, 0, len(r.DropsByReason))
	for reason := range r.DropsByReason {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}
