package analytics

import (
	"math"
	"sort"

	"github.com/markcheno/go-talib"
)

// VolatilityIndex computes a rolling standard deviation of closing prices.
// Positions before the window has filled are NaN, matching the missing-value
// convention used across the pipeline. Length and order are preserved.
func VolatilityIndex(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	if window < 2 || len(closes) < window {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	std := talib.StdDev(closes, window, 1.0)
	for i := range out {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = std[i]
	}
	return out
}

// BelowMedianFlags marks positions whose value lies strictly below the
// median of the finite values. Non-finite positions are never flagged.
func BelowMedianFlags(values []float64) []bool {
	finiteVals := make([]float64, 0, len(values))
	for _, v := range values {
		if finite(v) {
			finiteVals = append(finiteVals, v)
		}
	}

	flags := make([]bool, len(values))
	if len(finiteVals) == 0 {
		return flags
	}

	sort.Float64s(finiteVals)
	median := finiteVals[len(finiteVals)/2]
	if len(finiteVals)%2 == 0 {
		median = (finiteVals[len(finiteVals)/2-1] + finiteVals[len(finiteVals)/2]) / 2
	}

	for i, v := range values {
		flags[i] = finite(v) && v < median
	}
	return flags
}
