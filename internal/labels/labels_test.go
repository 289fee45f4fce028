package labels

import (
	"testing"
	"time"

	"churn-feature-lab/internal/domain"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestApply_PrimaryLabelFromResolution(t *testing.T) {
	rec := &domain.FeatureRecord{EntityID: "ent_001"}
	res := domain.Resolution{EntityID: "ent_001", ReferenceDate: domain.Date(2024, time.June, 1), Churned: true}

	Apply(rec, res, &domain.Entity{EntityID: "ent_001"})

	if !rec.ChurnLabel {
		t.Error("churn label must follow the resolution unchanged")
	}
}

func TestApply_AccountClosedOnOrBeforeReference(t *testing.T) {
	ref := domain.Date(2024, time.June, 1)
	res := domain.Resolution{EntityID: "ent_001", ReferenceDate: ref}

	cases := []struct {
		name      string
		closeDate *time.Time
		want      bool
	}{
		{"no close date", nil, false},
		{"closed before reference", datePtr(domain.Date(2024, time.May, 20)), true},
		{"closed on reference", datePtr(ref), true},
		{"closed after reference", nil, false}, // set below
	}
	cases[3].closeDate = datePtr(domain.Date(2024, time.June, 2))

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entity := &domain.Entity{
				EntityID: "ent_001",
				Accounts: []*domain.Account{
					{AccountID: "acc_101", OwnerID: "ent_001", CloseDate: tc.closeDate},
				},
			}
			rec := &domain.FeatureRecord{EntityID: "ent_001"}

			Apply(rec, res, entity)

			if rec.AccountClosed != tc.want {
				t.Errorf("expected AccountClosed=%v", tc.want)
			}
		})
	}
}

func TestApply_LabelsAreIndependent(t *testing.T) {
	// An active entity can still carry the account-closure label.
	ref := domain.Date(2024, time.September, 30)
	res := domain.Resolution{EntityID: "ent_001", ReferenceDate: ref, Churned: false}
	entity := &domain.Entity{
		EntityID: "ent_001",
		Accounts: []*domain.Account{
			{AccountID: "acc_101", CloseDate: datePtr(domain.Date(2024, time.March, 1))},
			{AccountID: "acc_102"},
		},
	}
	rec := &domain.FeatureRecord{EntityID: "ent_001"}

	Apply(rec, res, entity)

	if rec.ChurnLabel {
		t.Error("active entity must not carry the primary label")
	}
	if !rec.AccountClosed {
		t.Error("closed account must set the secondary label regardless of status")
	}
}
