package resolver

import (
	"errors"
	"testing"
	"time"

	"churn-feature-lab/internal/domain"
)

var runDate = domain.Date(2024, time.September, 30)

func datePtr(t time.Time) *time.Time { return &t }

func TestResolve_ActiveAnchorsAtRunDate(t *testing.T) {
	for _, status := range []domain.Status{domain.StatusActive, domain.StatusReactivated, domain.StatusOpen} {
		e := &domain.Entity{EntityID: "ent_001", Status: status}

		res, err := Resolve(e, runDate)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", status, err)
		}
		if res.Churned {
			t.Errorf("%s: must not be labeled churned", status)
		}
		if !res.ReferenceDate.Equal(runDate) {
			t.Errorf("%s: expected run date anchor, got %v", status, res.ReferenceDate)
		}
	}
}

func TestResolve_TerminalAnchorsAtClosureDate(t *testing.T) {
	closed := domain.Date(2024, time.June, 1)

	for _, status := range []domain.Status{domain.StatusSuspended, domain.StatusLocked, domain.StatusClosed} {
		e := &domain.Entity{
			EntityID: "ent_002",
			Status:   status,
			ClosedAt: datePtr(closed),
		}

		res, err := Resolve(e, runDate)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", status, err)
		}
		if !res.Churned {
			t.Errorf("%s: must be labeled churned", status)
		}
		if !res.ReferenceDate.Equal(closed) {
			t.Errorf("%s: expected closure date anchor, got %v", status, res.ReferenceDate)
		}
	}
}

func TestResolve_UnrecognizedStatus(t *testing.T) {
	e := &domain.Entity{EntityID: "ent_003", Status: domain.Status("dormant")}

	_, err := Resolve(e, runDate)
	if !errors.Is(err, ErrUnresolvedStatus) {
		t.Fatalf("expected ErrUnresolvedStatus, got %v", err)
	}
}

func TestResolve_TerminalWithoutClosureDate(t *testing.T) {
	e := &domain.Entity{EntityID: "ent_004", Status: domain.StatusSuspended}

	_, err := Resolve(e, runDate)
	if !errors.Is(err, ErrMissingReferenceDate) {
		t.Fatalf("expected ErrMissingReferenceDate, got %v", err)
	}
}

func TestResolve_DoesNotMutateEntity(t *testing.T) {
	closed := domain.Date(2024, time.June, 1)
	e := &domain.Entity{
		EntityID: "ent_005",
		Status:   domain.StatusClosed,
		ClosedAt: datePtr(closed),
	}

	if _, err := Resolve(e, runDate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status != domain.StatusClosed || !e.ClosedAt.Equal(closed) {
		t.Error("resolve must not mutate its input")
	}
}
