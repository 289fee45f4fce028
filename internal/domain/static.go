package domain

// Static entity-level feature names. These are computed once per entity
// by the assembler from the entity master and its accounts, not from
// windowed child records.
const (
	StaticAccountCount         = "account_count"
	StaticAccountAgeDays       = "account_age_days"
	StaticIsUSDomicile         = "is_us_domicile"
	StaticIsUSDBook            = "is_usd_book"
	StaticCapitalCommitment    = "capital_commitment"
	StaticHasCapitalCommitment = "has_capital_commitment"
	StaticNumDomicileCountries = "num_domicile_countries"
	StaticNumAssetClasses      = "num_asset_classes"
	StaticTopAssetClassShare   = "top_asset_class_concentration"
	StaticPrimaryAssetClass    = "primary_asset_class"
)

// StaticNumericFeatures lists the numeric static columns in emit order.
var StaticNumericFeatures = []string{
	StaticAccountCount,
	StaticAccountAgeDays,
	StaticIsUSDomicile,
	StaticIsUSDBook,
	StaticCapitalCommitment,
	StaticHasCapitalCommitment,
	StaticNumDomicileCountries,
	StaticNumAssetClasses,
	StaticTopAssetClassShare,
}

// StaticCategoricalFeatures lists the categorical static columns.
var StaticCategoricalFeatures = []string{
	StaticPrimaryAssetClass,
}
