// Package aggregate computes point-in-time window aggregates over one
// entity's child records. All computation is anchored at the entity's
// reference date: records dated after it never contribute to any
// window, and a window of w days covers (reference-w, reference] with
// an open lower bound.
package aggregate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"churn-feature-lab/internal/domain"
)

// Sample is one record's parsed contribution to a numeric field.
type Sample struct {
	RecordID  string
	EventDate time.Time
	Value     float64
}

// Skip describes a single record excluded from one field's aggregation.
type Skip struct {
	RecordID string
	Detail   string
}

// Extract parses the named numeric field out of records, dropping
// everything dated after referenceDate. Records dated after the
// reference date are excluded silently (anti-leakage, not a data
// problem); records with a missing or unparseable field inside the
// eligible range are returned as Skips so the caller can record a
// SkippedRecord diagnostic exactly once per (record, field).
func Extract(records []*domain.ChildRecord, field string, referenceDate time.Time) ([]Sample, []Skip) {
	var samples []Sample
	var skips []Skip

	for _, r := range records {
		if r.EventDate.After(referenceDate) {
			continue
		}

		raw, ok := r.NumericFields[field]
		if !ok {
			skips = append(skips, Skip{RecordID: r.RecordID, Detail: fmt.Sprintf("field %q missing", field)})
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			skips = append(skips, Skip{RecordID: r.RecordID, Detail: fmt.Sprintf("field %q not numeric: %q", field, raw)})
			continue
		}

		samples = append(samples, Sample{
			RecordID:  r.RecordID,
			EventDate: r.EventDate,
			Value:     v,
		})
	}

	return samples, skips
}

// Compute evaluates ops over the samples falling inside window at
// referenceDate. Samples are ordered by (event date ASC, record id ASC)
// before any order-dependent operator runs, so last_value ties on the
// maximal event date resolve to the highest record id.
//
// Empty-window policy: count, sum, abs_sum and frequency are 0;
// everything else is nil (null). "No records" must stay distinguishable
// from "aggregated to zero".
func Compute(samples []Sample, window domain.Window, referenceDate time.Time, ops []Op) map[Op]*float64 {
	inWindow := filterWindow(samples, window, referenceDate)
	sortSamples(inWindow)

	values := make([]float64, len(inWindow))
	for i, s := range inWindow {
		values[i] = s.Value
	}

	out := make(map[Op]*float64, len(ops))
	for _, op := range ops {
		out[op] = evaluate(op, inWindow, values, window, referenceDate)
	}
	return out
}

// filterWindow keeps samples with event date in (reference-w, reference].
func filterWindow(samples []Sample, window domain.Window, referenceDate time.Time) []Sample {
	var kept []Sample
	for _, s := range samples {
		if window.Contains(s.EventDate, referenceDate) {
			kept = append(kept, s)
		}
	}
	return kept
}

// sortSamples orders by (event date ASC, record id ASC). Deterministic
// across runs regardless of input order.
func sortSamples(samples []Sample) {
	sort.Slice(samples, func(i, j int) bool {
		if !samples[i].EventDate.Equal(samples[j].EventDate) {
			return samples[i].EventDate.Before(samples[j].EventDate)
		}
		return samples[i].RecordID < samples[j].RecordID
	})
}

func evaluate(op Op, samples []Sample, values []float64, window domain.Window, referenceDate time.Time) *float64 {
	n := len(values)

	switch op {
	case OpCount:
		return ptr(float64(n))

	case OpSum:
		return ptr(computeSum(values))

	case OpAbsSum:
		return ptr(computeAbsSum(values))

	case OpFrequency:
		if window.Days <= 0 {
			return nil
		}
		return ptr(float64(n) / float64(window.Days))

	case OpMean:
		if n == 0 {
			return nil
		}
		return ptr(computeSum(values) / float64(n))

	case OpStddev:
		if n == 0 {
			return nil
		}
		mean := computeSum(values) / float64(n)
		return ptr(computeStddev(values, mean))

	case OpMin:
		if n == 0 {
			return nil
		}
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}
		return ptr(min)

	case OpMax:
		if n == 0 {
			return nil
		}
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		return ptr(max)

	case OpLastValue:
		if n == 0 {
			return nil
		}
		// Samples are sorted (date ASC, id ASC): the final element is
		// the latest record, ties broken by highest record id.
		return ptr(samples[n-1].Value)

	case OpDaysSinceLast:
		if n == 0 {
			return nil
		}
		last := samples[n-1].EventDate
		return ptr(float64(domain.DaysBetween(last, referenceDate)))

	case OpNetRatio:
		return computeNetRatio(values)

	case OpTrend:
		return computeTrend(values)
	}

	return nil
}

func ptr(v float64) *float64 {
	return &v
}
