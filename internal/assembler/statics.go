package assembler

import (
	"sort"
	"time"

	"churn-feature-lab/internal/domain"
)

// assembleStatics computes entity-level features from the entity master
// and its accounts, plus asset-class composition from valuation records
// dated up to the reference date. Ages and compositions are measured
// against the entity's own reference date, never a run-global clock.
func (a *Assembler) assembleStatics(
	entity *domain.Entity,
	res domain.Resolution,
	valuations []*domain.ChildRecord,
	numeric map[string]*float64,
	categorical map[string]string,
) {
	numeric[domain.StaticAccountCount] = ptr(float64(len(entity.Accounts)))

	if opened := earliestOpenDate(entity); opened != nil {
		numeric[domain.StaticAccountAgeDays] = ptr(float64(domain.DaysBetween(*opened, res.ReferenceDate)))
	} else {
		numeric[domain.StaticAccountAgeDays] = nil
	}

	numeric[domain.StaticIsUSDomicile] = ptr(boolFeature(entity.DomicileCountry == "US"))
	numeric[domain.StaticIsUSDBook] = ptr(boolFeature(entity.BookCurrency == "USD"))

	commitment := totalCommitment(entity)
	numeric[domain.StaticCapitalCommitment] = ptr(commitment)
	numeric[domain.StaticHasCapitalCommitment] = ptr(boolFeature(commitment > 0))

	numeric[domain.StaticNumDomicileCountries] = ptr(float64(countDomiciles(entity)))

	assembleAssetClasses(valuations, res.ReferenceDate, numeric, categorical)
}

// earliestOpenDate returns the oldest known activation date across the
// entity and its accounts, or nil if none is recorded.
func earliestOpenDate(entity *domain.Entity) *time.Time {
	var earliest *time.Time
	consider := func(t *time.Time) {
		if t == nil {
			return
		}
		if earliest == nil || t.Before(*earliest) {
			earliest = t
		}
	}
	consider(entity.OpenedAt)
	for _, acct := range entity.Accounts {
		consider(acct.OpenDate)
	}
	return earliest
}

// totalCommitment sums the entity's commitment with its accounts'.
// Absent commitments count as zero, matching the account master where
// the column is sparsely populated.
func totalCommitment(entity *domain.Entity) float64 {
	total := 0.0
	if entity.CapitalCommitment != nil {
		total += *entity.CapitalCommitment
	}
	for _, acct := range entity.Accounts {
		if acct.CapitalCommitment != nil {
			total += *acct.CapitalCommitment
		}
	}
	return total
}

// countDomiciles counts distinct non-empty domicile countries across
// the entity and its accounts.
func countDomiciles(entity *domain.Entity) int {
	seen := make(map[string]bool)
	if entity.DomicileCountry != "" {
		seen[entity.DomicileCountry] = true
	}
	for _, acct := range entity.Accounts {
		if acct.DomicileCountry != "" {
			seen[acct.DomicileCountry] = true
		}
	}
	return len(seen)
}

// assembleAssetClasses derives portfolio composition from valuation
// snapshots dated up to the reference date: distinct asset class count,
// the share of the most frequent class, and the modal class itself.
// Modal ties resolve to the lexicographically smallest class name.
func assembleAssetClasses(
	valuations []*domain.ChildRecord,
	referenceDate time.Time,
	numeric map[string]*float64,
	categorical map[string]string,
) {
	counts := make(map[string]int)
	total := 0
	for _, v := range valuations {
		if v.EventDate.After(referenceDate) {
			continue
		}
		class, ok := v.CategoryFields[domain.FieldAssetClass]
		if !ok || class == "" {
			continue
		}
		counts[class]++
		total++
	}

	if total == 0 {
		numeric[domain.StaticNumAssetClasses] = ptr(0)
		numeric[domain.StaticTopAssetClassShare] = nil
		return
	}

	classes := make([]string, 0, len(counts))
	for class := range counts {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	primary := classes[0]
	for _, class := range classes[1:] {
		if counts[class] > counts[primary] {
			primary = class
		}
	}

	numeric[domain.StaticNumAssetClasses] = ptr(float64(len(counts)))
	numeric[domain.StaticTopAssetClassShare] = ptr(float64(counts[primary]) / float64(total))
	categorical[domain.StaticPrimaryAssetClass] = primary
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func ptr(v float64) *float64 {
	return &v
}
