package analytics

import (
	"math"

	"hermes/pkg/errors"
)

// LinearFit holds the coefficients of a single-feature ordinary least
// squares regression.
type LinearFit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	N         int     `json:"n"`
}

// FitLinear fits y = slope*x + intercept by ordinary least squares.
// Pairs with a non-finite x or y are skipped. Fewer than 2 usable pairs is
// ErrInsufficientData; a feature with zero variance is ErrDegenerateFeature.
// Both are explicit conditions rather than NaN coefficients.
func FitLinear(xs, ys []float64) (*LinearFit, error) {
	if len(xs) != len(ys) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "feature/target length mismatch: %d vs %d", len(xs), len(ys))
	}

	var n int
	var sumX, sumY float64
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		n++
		sumX += xs[i]
		sumY += ys[i]
	}
	if n < 2 {
		return nil, errors.Wrapf(errors.ErrInsufficientData, "need at least 2 finite observations, have %d", n)
	}

	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var ssXX, ssXY float64
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		dx := xs[i] - meanX
		ssXX += dx * dx
		ssXY += dx * (ys[i] - meanY)
	}
	if ssXX == 0 {
		return nil, errors.Wrap(errors.ErrDegenerateFeature, "cannot fit a slope")
	}

	slope := ssXY / ssXX
	return &LinearFit{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
		N:         n,
	}, nil
}

// Predict returns the fitted value for x
func (f *LinearFit) Predict(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// PredictAll returns fitted values for each x, preserving length and order.
// Non-finite inputs predict NaN.
func (f *LinearFit) PredictAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		if !finite(x) {
			out[i] = math.NaN()
			continue
		}
		out[i] = f.Predict(x)
	}
	return out
}

// Trendline fits OLS over a strictly increasing integer index assigned to
// each finite value, then re-inserts fitted values into a slice of the
// original length with NaN kept at the missing positions. Used for display
// series where gaps must stay gaps.
func Trendline(values []float64) ([]float64, error) {
	xs := make([]float64, 0, len(values))
	ys := make([]float64, 0, len(values))
	idx := 0
	for _, v := range values {
		if !finite(v) {
			continue
		}
		xs = append(xs, float64(idx))
		ys = append(ys, v)
		idx++
	}

	fit, err := FitLinear(xs, ys)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(values))
	pos := 0
	for i, v := range values {
		if !finite(v) {
			out[i] = math.NaN()
			continue
		}
		out[i] = fit.Predict(float64(pos))
		pos++
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
