package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/domain/analysis"
	"hermes/internal/domain/signal"
)

func TestSignedSentiment(t *testing.T) {
	tests := []struct {
		name  string
		label string
		score float64
		want  float64
	}{
		{"positive keeps sign", analysis.LabelPositive, 0.9, 0.9},
		{"negative flips sign", analysis.LabelNegative, 0.3, -0.3},
		{"positive zero stays zero", analysis.LabelPositive, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SignedSentiment(tt.label, tt.score))
		})
	}

	t.Run("neutral is NaN, not zero", func(t *testing.T) {
		got := SignedSentiment(analysis.LabelNeutral, 0.8)
		assert.True(t, math.IsNaN(got))
	})

	t.Run("unknown label is NaN", func(t *testing.T) {
		got := SignedSentiment("MIXED", 0.5)
		assert.True(t, math.IsNaN(got))
	})
}

func TestBuildSignals(t *testing.T) {
	d1 := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	rows := []signal.Row{
		{
			Date:           d1,
			SentimentScore: 0.9,
			SentimentLabel: analysis.LabelPositive,
			Recommendation: analysis.Buy,
			Close:          decimal.NewFromFloat(100.25),
		},
		{
			Date:           d2,
			SentimentScore: 0.4,
			SentimentLabel: analysis.LabelNeutral,
			Recommendation: analysis.Hold,
			Close:          decimal.NewFromInt(102),
		},
	}

	points := BuildSignals(rows)
	require.Len(t, points, 2)

	assert.Equal(t, d1, points[0].Date)
	assert.Equal(t, 0.9, points[0].Sentiment)
	assert.Equal(t, analysis.Buy, points[0].Recommendation)
	assert.InDelta(t, 100.25, points[0].Close, 1e-9)

	assert.True(t, math.IsNaN(points[1].Sentiment), "neutral sentiment must stay missing")
	assert.InDelta(t, 102, points[1].Close, 1e-9)
}
