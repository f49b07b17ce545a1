package analytics

import (
	"hermes/pkg/errors"
)

// RSquared computes the coefficient of determination, 1 - SSR/SST.
// A constant actual series has SST 0; that is reported as an error rather
// than a NaN score.
func RSquared(actual, predicted []float64) (float64, error) {
	if err := checkPair(actual, predicted); err != nil {
		return 0, err
	}

	var mean float64
	for _, y := range actual {
		mean += y
	}
	mean /= float64(len(actual))

	var ssr, sst float64
	for i := range actual {
		dr := actual[i] - predicted[i]
		dt := actual[i] - mean
		ssr += dr * dr
		sst += dt * dt
	}
	if sst == 0 {
		return 0, errors.Wrap(errors.ErrDegenerateFeature, "actual values are constant")
	}
	return 1 - ssr/sst, nil
}

// MeanSquaredError computes the mean of squared residuals
func MeanSquaredError(actual, predicted []float64) (float64, error) {
	if err := checkPair(actual, predicted); err != nil {
		return 0, err
	}

	var sum float64
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return sum / float64(len(actual)), nil
}

// DirectionalAccuracy is the fraction of rows whose predicted sign matches
// the actual sign. Exact zeros take sign 0 on both sides, so a zero
// prediction against a zero actual counts as a correct direction match.
func DirectionalAccuracy(actual, predicted []float64) (float64, error) {
	if err := checkPair(actual, predicted); err != nil {
		return 0, err
	}

	matches := 0
	for i := range actual {
		if sign(actual[i]) == sign(predicted[i]) {
			matches++
		}
	}
	return float64(matches) / float64(len(actual)), nil
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// ConfusionMatrix is a 2x2 grid indexed [actual][predicted], with 0 = down
// and 1 = up.
type ConfusionMatrix [2][2]int

// Record adds one observation
func (c *ConfusionMatrix) Record(actual, predicted bool) {
	c[boolIdx(actual)][boolIdx(predicted)]++
}

// Total returns the number of recorded observations
func (c ConfusionMatrix) Total() int {
	return c[0][0] + c[0][1] + c[1][0] + c[1][1]
}

// Accuracy is the fraction of observations on the diagonal
func (c ConfusionMatrix) Accuracy() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c[0][0]+c[1][1]) / float64(total)
}

// Confusion tallies actual vs predicted classes
func Confusion(actual, predicted []bool) (ConfusionMatrix, error) {
	var m ConfusionMatrix
	if len(actual) != len(predicted) {
		return m, errors.Wrapf(errors.ErrInvalidInput, "actual/predicted length mismatch: %d vs %d", len(actual), len(predicted))
	}
	for i := range actual {
		m.Record(actual[i], predicted[i])
	}
	return m, nil
}

func boolIdx(b bool) int {
	if b {
		return 1
	}
	return 0
}

func checkPair(actual, predicted []float64) error {
	if len(actual) != len(predicted) {
		return errors.Wrapf(errors.ErrInvalidInput, "actual/predicted length mismatch: %d vs %d", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return errors.Wrap(errors.ErrInsufficientData, "no observations to score")
	}
	return nil
}
