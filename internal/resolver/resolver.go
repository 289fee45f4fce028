// Package resolver assigns each entity its reference date and primary
// churn label. The reference date is fixed here once per run: closure
// date for churned entities, the pipeline run date for active ones.
// Downstream stages must never substitute a wall-clock "now", or the
// churned and active populations stop being comparable.
package resolver

import (
	"errors"
	"fmt"
	"time"

	"churn-feature-lab/internal/domain"
)

// ErrUnresolvedStatus is returned when an entity's status is not in the
// recognized set. Unknown statuses are never defaulted to active.
var ErrUnresolvedStatus = errors.New("unresolved entity status")

// ErrMissingReferenceDate is returned when a terminal status lacks the
// transition date needed to anchor lookback windows. Fabricating a date
// would silently misalign windows, so the entity is excluded instead.
var ErrMissingReferenceDate = errors.New("terminal status without transition date")

// Resolve produces the entity's reference date and churn label.
// Pure: the input entity is never mutated.
func Resolve(e *domain.Entity, runDate time.Time) (domain.Resolution, error) {
	if !e.Status.Recognized() {
		return domain.Resolution{}, fmt.Errorf("entity %s status %q: %w", e.EntityID, e.Status, ErrUnresolvedStatus)
	}

	if e.Status.Terminal() {
		if e.ClosedAt == nil {
			return domain.Resolution{}, fmt.Errorf("entity %s status %q: %w", e.EntityID, e.Status, ErrMissingReferenceDate)
		}
		return domain.Resolution{
			EntityID:      e.EntityID,
			ReferenceDate: *e.ClosedAt,
			Churned:       true,
		}, nil
	}

	return domain.Resolution{
		EntityID:      e.EntityID,
		ReferenceDate: runDate,
		Churned:       false,
	}, nil
}
