package domain

import "time"

// Stream names for child record sources.
const (
	StreamTransactions = "transactions"
	StreamValuations   = "valuations"
)

// Well-known numeric field names.
const (
	FieldAmount         = "amount"
	FieldMarketValue    = "market_value"
	FieldUnrealizedGain = "unrealized_gain_loss"
)

// Well-known category field names.
const (
	FieldEventType  = "event_type"
	FieldAssetClass = "asset_class"
)

// ChildRecord is a transaction or a daily valuation snapshot belonging
// to exactly one entity, directly or through one of its accounts.
// Numeric fields are kept as raw text and parsed at aggregation time so
// that a malformed value surfaces as a SkippedRecord diagnostic instead
// of being dropped at load time.
type ChildRecord struct {
	RecordID       string            // unique within the stream, tie-break key
	OwnerID        string            // entity or account id
	EventDate      time.Time         // UTC midnight, anchor for window membership
	NumericFields  map[string]string // field name -> raw numeric text
	CategoryFields map[string]string // field name -> categorical value
}

// Date returns a UTC midnight time for year, month, day. Event dates
// and reference dates are calendar dates, not instants.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
