package memory

import "churn-feature-lab/internal/domain"

// Stores hand out copies so callers can never mutate stored state.
// Entities, child records and feature records carry maps and slices,
// so a shallow struct copy is not enough.

func cloneEntity(e *domain.Entity) *domain.Entity {
	out := *e
	if e.CapitalCommitment != nil {
		v := *e.CapitalCommitment
		out.CapitalCommitment = &v
	}
	out.Accounts = make([]*domain.Account, len(e.Accounts))
	for i, a := range e.Accounts {
		out.Accounts[i] = cloneAccount(a)
	}
	return &out
}

func cloneAccount(a *domain.Account) *domain.Account {
	out := *a
	if a.CapitalCommitment != nil {
		v := *a.CapitalCommitment
		out.CapitalCommitment = &v
	}
	return &out
}

func cloneRecord(r *domain.ChildRecord) *domain.ChildRecord {
	out := *r
	out.NumericFields = cloneStringMap(r.NumericFields)
	out.CategoryFields = cloneStringMap(r.CategoryFields)
	return &out
}

func cloneFeatureRecord(f *domain.FeatureRecord) *domain.FeatureRecord {
	out := *f
	out.Numeric = make(map[string]*float64, len(f.Numeric))
	for k, v := range f.Numeric {
		if v == nil {
			out.Numeric[k] = nil
			continue
		}
		val := *v
		out.Numeric[k] = &val
	}
	out.Categorical = cloneStringMap(f.Categorical)
	return &out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
