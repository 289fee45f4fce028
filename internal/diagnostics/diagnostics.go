// Package diagnostics collects per-entity and per-record data quality
// findings without failing the run. Nothing is silently dropped: every
// excluded entity and skipped record leaves an entry here.
package diagnostics

import (
	"fmt"
	"sort"
	"sync"
)

// Reason classifies a diagnostic entry.
type Reason string

const (
	// ReasonUnresolvedStatus marks an entity whose status value is not
	// in the recognized set. The entity is excluded from output.
	ReasonUnresolvedStatus Reason = "UnresolvedStatus"

	// ReasonMissingReferenceDate marks an entity in a terminal status
	// that lacks the transition date needed to anchor windows.
	ReasonMissingReferenceDate Reason = "MissingReferenceDate"

	// ReasonSkippedRecord marks a single child record excluded from one
	// aggregation because of an unparseable or missing numeric field.
	// The entity is still processed.
	ReasonSkippedRecord Reason = "SkippedRecord"
)

// Entry is one diagnostic finding.
type Entry struct {
	EntityID string
	RecordID string // empty for entity-level drops
	Stream   string // empty for entity-level drops
	Field    string // numeric field involved, if any
	Reason   Reason
	Detail   string
}

// String renders the entry for logs and reports.
func (e Entry) String() string {
	if e.RecordID == "" {
		return fmt.Sprintf("%s: entity %s: %s", e.Reason, e.EntityID, e.Detail)
	}
	return fmt.Sprintf("%s: entity %s record %s (%s.%s): %s",
		e.Reason, e.EntityID, e.RecordID, e.Stream, e.Field, e.Detail)
}

// Collector accumulates entries. Safe for concurrent append; workers
// may also keep a local Collector and merge it at fan-in.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends one entry.
func (c *Collector) Add(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

// Merge appends all entries from other.
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	other.mu.Lock()
	batch := make([]Entry, len(other.entries))
	copy(batch, other.entries)
	other.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, batch...)
}

// Entries returns a sorted copy, ordered by (entity, record, stream,
// field) for deterministic reports.
func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].EntityID != out[j].EntityID {
			return out[i].EntityID < out[j].EntityID
		}
		if out[i].RecordID != out[j].RecordID {
			return out[i].RecordID < out[j].RecordID
		}
		if out[i].Stream != out[j].Stream {
			return out[i].Stream < out[j].Stream
		}
		return out[i].Field < out[j].Field
	})
	return out
}

// Len returns the number of collected entries.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CountByReason tallies entries per reason.
func (c *Collector) CountByReason() map[Reason]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[Reason]int)
	for _, e := range c.entries {
		counts[e.Reason]++
	}
	return counts
}
