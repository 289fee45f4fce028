// Package labels attaches churn labels to assembled feature records.
// The primary label comes from the entity resolver unchanged. The
// secondary account-closure label is an independent computation — the
// source material defines both user-status churn and account-closure
// churn without a precedence rule, so neither overrides the other.
package labels

import (
	"churn-feature-lab/internal/domain"
)

// Apply sets both labels on the record. The secondary label follows
// the same anti-leakage discipline as every feature: an account closure
// dated after the entity's reference date does not count. Mixing a
// global "today" into one label type while features use per-entity
// dates would make the labels incomparable, so the resolution's
// reference date is the only clock here.
func Apply(rec *domain.FeatureRecord, res domain.Resolution, entity *domain.Entity) {
	rec.ChurnLabel = res.Churned
	rec.AccountClosed = anyAccountClosed(entity, res)
}

// anyAccountClosed reports whether any owned account has a close date
// on or before the entity's reference date.
func anyAccountClosed(entity *domain.Entity, res domain.Resolution) bool {
	for _, acct := range entity.Accounts {
		if acct.CloseDate == nil {
			continue
		}
		if !acct.CloseDate.After(res.ReferenceDate) {
			return true
		}
	}
	return false
}
