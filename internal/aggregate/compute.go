package aggregate

import "math"

// computeSum calculates the signed sum.
func computeSum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// computeAbsSum calculates gross volume: the sum of absolute values.
func computeAbsSum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += math.Abs(v)
	}
	return sum
}

// computeStddev calculates population standard deviation (n denominator).
// A single sample yields 0; the caller handles the empty case.
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n))
}

// computeNetRatio calculates (inflows - outflows) / gross, where
// inflows is the sum of positive values and outflows the magnitude of
// negative values. Returns nil when gross is 0 (no flow either way):
// there is no meaningful direction to report.
func computeNetRatio(values []float64) *float64 {
	inflows := 0.0
	outflows := 0.0
	for _, v := range values {
		if v > 0 {
			inflows += v
		} else {
			outflows += -v
		}
	}
	gross := inflows + outflows
	if gross == 0 {
		return nil
	}
	ratio := (inflows - outflows) / gross
	return &ratio
}

// computeTrend calculates the least-squares slope of value over
// observation index. Values must be in chronological order. Returns nil
// with fewer than 2 samples.
func computeTrend(values []float64) *float64 {
	n := len(values)
	if n < 2 {
		return nil
	}

	// x = 0..n-1, closed-form simple linear regression.
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return nil
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	return &slope
}
