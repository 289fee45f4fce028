package domain

import "time"

// FeatureRecord is the engine's output: one flat row per entity. It is
// immutable after assembly and a pure function of the entity's child
// records, reference date, and the configured feature set. A nil entry
// in Numeric is an explicit null: "no records in window" is a different
// signal from "aggregated to zero" and the two are never conflated.
type FeatureRecord struct {
	EntityID      string
	ReferenceDate time.Time // retained for auditability, not a model feature
	ChurnLabel    bool      // primary label from the entity resolver
	AccountClosed bool      // secondary label: any owned account closed by reference date

	Numeric     map[string]*float64
	Categorical map[string]string
}

// NumericValue returns the named numeric feature and whether it is
// non-null.
func (f *FeatureRecord) NumericValue(name string) (float64, bool) {
	v, ok := f.Numeric[name]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}
