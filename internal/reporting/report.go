package reporting

import (
	"time"

	"churn-feature-lab/internal/diagnostics"
)

// Report summarizes one pipeline run for human review.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunDate     string

	// Population
	EntitiesEmitted int
	EntitiesDropped int
	RecordsSkipped  int

	// Label balance over emitted entities
	ChurnedCount       int
	ActiveCount        int
	AccountClosedCount int

	// Feature surface
	NumericColumns     int
	CategoricalColumns int

	// Exclusions by reason, then the individual entries
	DropsByReason map[diagnostics.Reason]int
	Diagnostics   []diagnostics.Entry
}

// ChurnRate returns the churned share of emitted entities, 0 when none
// were emitted.
func (r *Report) ChurnRate() float64 {
	total := r.ChurnedCount + r.ActiveCount
	if total == 0 {
		return 0
	}
	return float64(r.ChurnedCount) / float64(total)
}
