// Package pipeline runs the batch feature computation end to end:
// resolve → aggregate → assemble → label, fanned out across a worker
// pool with one fan-in at the end. Entities are independent units of
// work; one entity's failure never suppresses another's output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"churn-feature-lab/internal/assembler"
	"churn-feature-lab/internal/config"
	"churn-feature-lab/internal/diagnostics"
	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/labels"
	"churn-feature-lab/internal/observability"
	"churn-feature-lab/internal/resolver"
	"churn-feature-lab/internal/storage"
)

const defaultWorkers = 4

// Options for creating a Runner.
type Options struct {
	Config *config.Config

	// Required input stores.
	EntityStore      storage.EntityStore
	TransactionStore storage.TransactionStore
	ValuationStore   storage.ValuationStore

	// Optional feature sink. When set, assembled records are persisted
	// after fan-in.
	FeatureStore storage.FeatureStore

	// Optional observability.
	Metrics *observability.Metrics

	Verbose bool
}

// Runner executes one pipeline run over a closed batch of entities.
type Runner struct {
	cfg       *config.Config
	runDate   time.Time
	lookback  int // longest configured window, in days
	workers   int
	entities  storage.EntityStore
	txns      storage.TransactionStore
	vals      storage.ValuationStore
	features  storage.FeatureStore
	metrics   *observability.Metrics
	assembler *assembler.Assembler
	verbose   bool
}

// Result is one completed run: the feature table plus the diagnostics
// the caller must inspect before trusting downstream class balance.
type Result struct {
	Features    []*domain.FeatureRecord
	Diagnostics []diagnostics.Entry

	EntitiesResolved int
	EntitiesDropped  int
	RecordsSkipped   int
}

// New creates a Runner. Configuration is validated here — before any
// per-entity work — and a broken configuration fails the construction.
func New(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("pipeline: config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	runDate, err := opts.Config.ParsedRunDate()
	if err != nil {
		return nil, err
	}
	if opts.EntityStore == nil || opts.TransactionStore == nil || opts.ValuationStore == nil {
		return nil, fmt.Errorf("pipeline: entity, transaction and valuation stores are required")
	}

	workers := opts.Config.Workers
	if workers == 0 {
		workers = defaultWorkers
	}

	lookback := 0
	for _, w := range opts.Config.Windows {
		if w.Days > lookback {
			lookback = w.Days
		}
	}

	return &Runner{
		cfg:       opts.Config,
		runDate:   runDate,
		lookback:  lookback,
		workers:   workers,
		entities:  opts.EntityStore,
		txns:      opts.TransactionStore,
		vals:      opts.ValuationStore,
		features:  opts.FeatureStore,
		metrics:   opts.Metrics,
		assembler: assembler.New(opts.Config),
		verbose:   opts.Verbose,
	}, nil
}

// Run executes the full batch. Per-entity failures are recovered
// locally and reported; only infrastructure errors (store failures)
// abort the run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	r.log("loading entities...")
	entities, err := r.entities.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entities: %w", err)
	}
	r.log("loaded %d entities", len(entities))

	slots, collector, err := r.fanOut(ctx, entities)
	if err != nil {
		return nil, err
	}

	result := &Result{Diagnostics: collector.Entries()}
	for _, f := range slots {
		if f != nil {
			result.Features = append(result.Features, f)
		}
	}
	result.EntitiesResolved = len(result.Features)
	result.EntitiesDropped = len(entities) - len(result.Features)
	for _, e := range result.Diagnostics {
		if e.Reason == diagnostics.ReasonSkippedRecord {
			result.RecordsSkipped++
		}
	}

	if r.features != nil && len(result.Features) > 0 {
		if err := r.features.InsertBulk(ctx, result.Features); err != nil {
			return nil, fmt.Errorf("persist features: %w", err)
		}
	}

	r.observe(result, time.Since(started))
	r.log("run completed: %d emitted, %d dropped, %d records skipped",
		result.EntitiesResolved, result.EntitiesDropped, result.RecordsSkipped)

	return result, nil
}

// fanOut distributes entities over the worker pool. Each worker keeps a
// local diagnostics collector, merged once at fan-in, so concurrent
// appends never race. Output slots are indexed by the entity's position
// in the (entity_id-ordered) batch, keeping the result deterministic
// regardless of scheduling.
func (r *Runner) fanOut(ctx context.Context, entities []*domain.Entity) ([]*domain.FeatureRecord, *diagnostics.Collector, error) {
	type job struct {
		idx    int
		entity *domain.Entity
	}

	slots := make([]*domain.FeatureRecord, len(entities))
	infraErrs := make([]error, r.workers)
	collectors := make([]*diagnostics.Collector, r.workers)

	jobs := make(chan job)
	done := make(chan int, r.workers)

	for w := 0; w < r.workers; w++ {
		collectors[w] = diagnostics.NewCollector()
		go func(worker int) {
			defer func() { done <- worker }()
			for j := range jobs {
				// A failed worker keeps draining so the producer
				// loop below never blocks on the jobs channel.
				if infraErrs[worker] != nil {
					continue
				}
				f, err := r.processEntity(ctx, j.entity, collectors[worker])
				if err != nil {
					infraErrs[worker] = err
					continue
				}
				slots[j.idx] = f
			}
		}(w)
	}

	for i, e := range entities {
		jobs <- job{idx: i, entity: e}
	}
	close(jobs)

	for w := 0; w < r.workers; w++ {
		<-done
	}

	merged := diagnostics.NewCollector()
	for _, c := range collectors {
		merged.Merge(c)
	}
	for _, err := range infraErrs {
		if err != nil {
			return nil, nil, err
		}
	}

	return slots, merged, nil
}

// processEntity runs resolve → load → aggregate/assemble → label for
// one entity. Returns (nil, nil) when the entity is dropped with a
// diagnostic; a non-nil error means an infrastructure failure.
func (r *Runner) processEntity(ctx context.Context, entity *domain.Entity, collector *diagnostics.Collector) (*domain.FeatureRecord, error) {
	res, err := resolver.Resolve(entity, r.runDate)
	if err != nil {
		collector.Add(diagnostics.Entry{
			EntityID: entity.EntityID,
			Reason:   dropReason(err),
			Detail:   err.Error(),
		})
		return nil, nil
	}

	ownerIDs := ownerScope(entity)

	txns, err := r.txns.GetByOwnerIDs(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("load transactions for %s: %w", entity.EntityID, err)
	}
	// Valuations are the high-volume stream; the longest window bounds
	// the range that can ever contribute, so the load is range-limited
	// to (reference - lookback, reference] up front.
	since := res.ReferenceDate.AddDate(0, 0, -r.lookback)
	vals, err := r.vals.GetByOwnerIDsSince(ctx, ownerIDs, since, res.ReferenceDate)
	if err != nil {
		return nil, fmt.Errorf("load valuations for %s: %w", entity.EntityID, err)
	}

	streams := map[string][]*domain.ChildRecord{
		domain.StreamTransactions: txns,
		domain.StreamValuations:   vals,
	}

	record, skipped := r.assembler.Assemble(entity, res, streams)
	for _, s := range skipped {
		collector.Add(s)
	}

	labels.Apply(record, res, entity)
	return record, nil
}

// ownerScope returns every id whose child records belong to the entity:
// the entity itself plus all owned accounts.
func ownerScope(entity *domain.Entity) []string {
	ids := make([]string, 0, 1+len(entity.Accounts))
	ids = append(ids, entity.EntityID)
	for _, acct := range entity.Accounts {
		ids = append(ids, acct.AccountID)
	}
	return ids
}

func dropReason(err error) diagnostics.Reason {
	switch {
	case errors.Is(err, resolver.ErrMissingReferenceDate):
		return diagnostics.ReasonMissingReferenceDate
	default:
		return diagnostics.ReasonUnresolvedStatus
	}
}

func (r *Runner) observe(result *Result, elapsed time.Duration) {
	if r.metrics == nil {
		return
	}
	r.metrics.EntitiesResolved.Add(float64(result.EntitiesResolved))
	r.metrics.FeaturesEmitted.Add(float64(len(result.Features)))
	r.metrics.RecordsSkipped.Add(float64(result.RecordsSkipped))
	for _, e := range result.Diagnostics {
		if e.Reason != diagnostics.ReasonSkippedRecord {
			r.metrics.EntitiesDropped.WithLabelValues(string(e.Reason)).Inc()
		}
	}
	r.metrics.RunDuration.Observe(elapsed.Seconds())
	r.metrics.RunsTotal.Inc()
}

func (r *Runner) log(format string, args ...interface{}) {
	if r.verbose {
		log.Printf("[pipeline] "+format, args...)
	}
}
