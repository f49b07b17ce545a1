package analytics

import (
	"math"
	"time"

	"hermes/internal/domain/analysis"
	"hermes/internal/domain/signal"
)

// SignalPoint is one dated observation entering the correlation pipeline
type SignalPoint struct {
	Date           time.Time               `json:"date"`
	Sentiment      float64                 `json:"sentiment"` // signed; NaN when the label carries no polarity
	Recommendation analysis.Recommendation `json:"recommendation"`
	Close          float64                 `json:"close_price"`
}

// ReturnPoint is a SignalPoint aligned with the next trading day's close
type ReturnPoint struct {
	SignalPoint
	NextClose float64 `json:"next_close"`
	Return    float64 `json:"return"`
}

// SignedSentiment folds a polarity label and a magnitude into one signed
// scalar. A neutral or unrecognized label has no sign, so the result is NaN
// rather than 0: downstream stages drop missing values, and coercing to zero
// would instead feed them into the fit as a real observation.
func SignedSentiment(label string, score float64) float64 {
	switch label {
	case analysis.LabelPositive:
		return score
	case analysis.LabelNegative:
		return -score
	}
	return math.NaN()
}

// BuildSignals converts joined store rows into pipeline points, computing the
// signed sentiment per row. Input order (ascending by date) is preserved.
func BuildSignals(rows []signal.Row) []SignalPoint {
	points := make([]SignalPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, SignalPoint{
			Date:           row.Date,
			Sentiment:      SignedSentiment(row.SentimentLabel, row.SentimentScore),
			Recommendation: row.Recommendation,
			Close:          row.Close.InexactFloat64(),
		})
	}
	return points
}
