package aggregate

// Op names a window aggregate operator. The set is closed: a
// configuration requesting an unknown operator fails validation before
// any per-entity work begins.
type Op string

const (
	OpCount         Op = "count"           // number of in-window samples
	OpSum           Op = "sum"             // signed sum
	OpAbsSum        Op = "abs_sum"         // sum of absolute values (volume)
	OpMean          Op = "mean"            // arithmetic mean
	OpStddev        Op = "stddev"          // population standard deviation
	OpMin           Op = "min"             // minimum value
	OpMax           Op = "max"             // maximum value
	OpLastValue     Op = "last_value"      // value of the latest in-window sample
	OpDaysSinceLast Op = "days_since_last" // reference date minus latest event date
	OpNetRatio      Op = "net_ratio"       // (inflows - outflows) / gross
	OpFrequency     Op = "frequency"       // count / window length in days
	OpTrend         Op = "trend"           // least-squares slope over observation index
)

// AllOps lists every supported operator, in stable order.
var AllOps = []Op{
	OpCount, OpSum, OpAbsSum, OpMean, OpStddev, OpMin, OpMax,
	OpLastValue, OpDaysSinceLast, OpNetRatio, OpFrequency, OpTrend,
}

// Valid reports whether op is a supported operator.
func (op Op) Valid() bool {
	for _, known := range AllOps {
		if op == known {
			return true
		}
	}
	return false
}
