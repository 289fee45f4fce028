package config

import (
	"churn-feature-lab/internal/aggregate"
	"churn-feature-lab/internal/domain"
)

// Default returns the canonical configuration: 30/90/180-day
// transaction windows, 30/90/180/365-day valuation windows, and the
// standard derived ratios. Store DSNs are left empty; callers running
// against real stores fill them in.
func Default(runDate string) *Config {
	opNames := func(ops ...aggregate.Op) []string {
		out := make([]string, len(ops))
		for i, op := range ops {
			out[i] = string(op)
		}
		return out
	}

	return &Config{
		RunDate: runDate,
		Workers: 4,
		Windows: []WindowSpec{
			{Name: "30d", Days: 30},
			{Name: "90d", Days: 90},
			{Name: "180d", Days: 180},
			{Name: "365d", Days: 365},
		},
		Aggregates: []AggregateSpec{
			{
				Stream:  domain.StreamTransactions,
				Field:   domain.FieldAmount,
				Windows: []string{"30d", "90d", "180d"},
				Ops: opNames(
					aggregate.OpCount, aggregate.OpSum, aggregate.OpAbsSum,
					aggregate.OpMean, aggregate.OpStddev, aggregate.OpMax,
					aggregate.OpFrequency, aggregate.OpNetRatio,
					aggregate.OpDaysSinceLast,
				),
			},
			{
				Stream:  domain.StreamValuations,
				Field:   domain.FieldMarketValue,
				Windows: []string{"30d", "90d", "180d", "365d"},
				Ops: opNames(
					aggregate.OpMean, aggregate.OpMin, aggregate.OpMax,
					aggregate.OpStddev, aggregate.OpTrend,
					aggregate.OpLastValue, aggregate.OpDaysSinceLast,
				),
			},
			{
				Stream:  domain.StreamValuations,
				Field:   domain.FieldUnrealizedGain,
				Windows: []string{"90d", "365d"},
				Ops: opNames(
					aggregate.OpMean, aggregate.OpSum, aggregate.OpLastValue,
				),
			},
		},
		Derived: []DerivedSpec{
			{
				Name:  "txn_frequency_ratio_30d_90d",
				Kind:  DerivedRatio,
				Left:  ColumnName(domain.StreamTransactions, domain.FieldAmount, aggregate.OpFrequency, "30d"),
				Right: ColumnName(domain.StreamTransactions, domain.FieldAmount, aggregate.OpFrequency, "90d"),
			},
			{
				Name:  "txn_volume_delta_30d_90d",
				Kind:  DerivedDelta,
				Left:  ColumnName(domain.StreamTransactions, domain.FieldAmount, aggregate.OpAbsSum, "30d"),
				Right: ColumnName(domain.StreamTransactions, domain.FieldAmount, aggregate.OpAbsSum, "90d"),
			},
			{
				Name:  "portfolio_volatility_365d",
				Kind:  DerivedRatio,
				Left:  ColumnName(domain.StreamValuations, domain.FieldMarketValue, aggregate.OpStddev, "365d"),
				Right: ColumnName(domain.StreamValuations, domain.FieldMarketValue, aggregate.OpMean, "365d"),
			},
		},
	}
}
