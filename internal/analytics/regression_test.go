package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/pkg/errors"
)

func TestFitLinear_RecoversLine(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ys := []float64{3, 5, 7, 9} // y = 2x + 1

	fit, err := FitLinear(xs, ys)
	require.NoError(t, err)

	assert.InDelta(t, 2, fit.Slope, 1e-9)
	assert.InDelta(t, 1, fit.Intercept, 1e-9)
	assert.Equal(t, 4, fit.N)
}

func TestFitLinear_SkipsNonFinitePairs(t *testing.T) {
	xs := []float64{1, math.NaN(), 2, 3}
	ys := []float64{3, 100, 5, 7}

	fit, err := FitLinear(xs, ys)
	require.NoError(t, err)

	assert.Equal(t, 3, fit.N)
	assert.InDelta(t, 2, fit.Slope, 1e-9)
	assert.InDelta(t, 1, fit.Intercept, 1e-9)
}

func TestFitLinear_InsufficientData(t *testing.T) {
	_, err := FitLinear([]float64{1}, []float64{2})
	assert.ErrorIs(t, err, errors.ErrInsufficientData)

	_, err = FitLinear(nil, nil)
	assert.ErrorIs(t, err, errors.ErrInsufficientData)

	// Only one finite pair left after filtering
	_, err = FitLinear([]float64{1, math.NaN()}, []float64{2, 3})
	assert.ErrorIs(t, err, errors.ErrInsufficientData)
}

func TestFitLinear_DegenerateFeature(t *testing.T) {
	_, err := FitLinear([]float64{2, 2, 2}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, errors.ErrDegenerateFeature)
}

func TestLinearFit_Predict(t *testing.T) {
	fit := &LinearFit{Slope: 2, Intercept: 1}

	assert.InDelta(t, 7, fit.Predict(3), 1e-12)
	assert.True(t, math.IsNaN(fit.Predict(math.NaN())), "missing input must stay missing")

	preds := fit.PredictAll([]float64{0, math.NaN(), 2})
	require.Len(t, preds, 3)
	assert.InDelta(t, 1, preds[0], 1e-12)
	assert.True(t, math.IsNaN(preds[1]))
	assert.InDelta(t, 5, preds[2], 1e-12)
}

func TestTrendline(t *testing.T) {
	trend, err := Trendline([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	require.Len(t, trend, 4)
	for i, want := range []float64{1, 2, 3, 4} {
		assert.InDelta(t, want, trend[i], 1e-9)
	}
}

func TestTrendline_PreservesGaps(t *testing.T) {
	trend, err := Trendline([]float64{1, math.NaN(), 3, 4})
	require.NoError(t, err)
	require.Len(t, trend, 4)

	assert.True(t, math.IsNaN(trend[1]), "gap stays a gap")
	assert.InDelta(t, 1, trend[0], 1e-9)
	assert.InDelta(t, 4, trend[3], 1e-9)
}

func TestTrendline_InsufficientData(t *testing.T) {
	_, err := Trendline([]float64{1})
	assert.ErrorIs(t, err, errors.ErrInsufficientData)
}
