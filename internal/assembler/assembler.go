// Package assembler flattens per-window aggregates, entity-level static
// attributes, and derived combinations into one immutable FeatureRecord
// per entity. Derived features live here and nowhere else: they combine
// results from two different windows, which no single-window computation
// may do.
package assembler

import (
	"churn-feature-lab/internal/aggregate"
	"churn-feature-lab/internal/config"
	"churn-feature-lab/internal/diagnostics"
	"churn-feature-lab/internal/domain"
)

// Assembler builds FeatureRecords according to one validated config.
type Assembler struct {
	cfg     *config.Config
	windows map[string]domain.Window
}

// New creates an assembler. The config must already be validated.
func New(cfg *config.Config) *Assembler {
	windows := make(map[string]domain.Window, len(cfg.Windows))
	for _, w := range cfg.Windows {
		windows[w.Name] = domain.Window{Name: w.Name, Days: w.Days}
	}
	return &Assembler{cfg: cfg, windows: windows}
}

// Assemble produces the entity's FeatureRecord from its resolved
// reference date and per-stream child records. Labels are attached by
// the label emitter afterwards. Returned diagnostics carry one
// SkippedRecord entry per (record, field) with an unparseable value;
// the entity itself is always assembled.
func (a *Assembler) Assemble(
	entity *domain.Entity,
	res domain.Resolution,
	streams map[string][]*domain.ChildRecord,
) (*domain.FeatureRecord, []diagnostics.Entry) {
	numeric := make(map[string]*float64)
	categorical := make(map[string]string)
	var skipped []diagnostics.Entry

	// Windowed aggregates per configured (stream, field).
	for _, spec := range a.cfg.Aggregates {
		records := streams[spec.Stream]
		samples, skips := aggregate.Extract(records, spec.Field, res.ReferenceDate)
		for _, s := range skips {
			skipped = append(skipped, diagnostics.Entry{
				EntityID: entity.EntityID,
				RecordID: s.RecordID,
				Stream:   spec.Stream,
				Field:    spec.Field,
				Reason:   diagnostics.ReasonSkippedRecord,
				Detail:   s.Detail,
			})
		}

		ops := make([]aggregate.Op, len(spec.Ops))
		for i, op := range spec.Ops {
			ops[i] = aggregate.Op(op)
		}

		for _, windowName := range spec.Windows {
			window := a.windows[windowName]
			results := aggregate.Compute(samples, window, res.ReferenceDate, ops)
			for op, value := range results {
				numeric[config.ColumnName(spec.Stream, spec.Field, op, windowName)] = value
			}
		}
	}

	// Entity-level statics.
	a.assembleStatics(entity, res, streams[domain.StreamValuations], numeric, categorical)

	// Derived features, strictly from already-assembled columns.
	for _, d := range a.cfg.Derived {
		numeric[d.Name] = deriveValue(d, numeric)
	}

	return &domain.FeatureRecord{
		EntityID:      entity.EntityID,
		ReferenceDate: res.ReferenceDate,
		Numeric:       numeric,
		Categorical:   categorical,
	}, skipped
}

// deriveValue computes one derived feature. The null policy is strict:
// if either operand is null the result is null, and a ratio with a zero
// denominator is null. Defaults are never substituted here; if anyone
// imputes, it is the downstream training component.
func deriveValue(d config.DerivedSpec, numeric map[string]*float64) *float64 {
	left, okL := numeric[d.Left]
	right, okR := numeric[d.Right]
	if !okL || !okR || left == nil || right == nil {
		return nil
	}

	switch d.Kind {
	case config.DerivedRatio:
		if *right == 0 {
			return nil
		}
		v := *left / *right
		return &v
	case config.DerivedDelta:
		v := *left - *right
		return &v
	}
	return nil
}
