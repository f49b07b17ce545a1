package analytics

import (
	"context"
	"math"
	"time"

	"hermes/internal/domain/signal"
	"hermes/internal/domain/stockprice"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Pipeline runs the full sentiment-to-return correlation: load joined
// signals, align next-day closes, fit the return and direction models and
// score them. One invocation processes the whole current data set in memory.
type Pipeline struct {
	signals   signal.Repository
	prices    stockprice.Repository
	volWindow int
	log       *logger.Logger
}

// NewPipeline creates a correlation pipeline
func NewPipeline(signals signal.Repository, prices stockprice.Repository, volWindow int) *Pipeline {
	if volWindow < 2 {
		volWindow = 5
	}
	return &Pipeline{
		signals:   signals,
		prices:    prices,
		volWindow: volWindow,
		log:       logger.Get().With("component", "analytics_pipeline"),
	}
}

// ReportRow is one merged, return-annotated observation. Pointer fields are
// nil where the underlying value is missing so the report serializes cleanly.
type ReportRow struct {
	Date            string   `json:"date"`
	Sentiment       *float64 `json:"sentiment"`
	Recommendation  string   `json:"recommendation"`
	Close           float64  `json:"close_price"`
	NextClose       float64  `json:"next_close"`
	Return          float64  `json:"return"`
	PredictedReturn *float64 `json:"predicted_return"`
}

// ReturnModelReport holds the fitted return model and its scores
type ReturnModelReport struct {
	Slope               float64 `json:"slope"`
	Intercept           float64 `json:"intercept"`
	N                   int     `json:"n"`
	R2                  float64 `json:"r2"`
	MSE                 float64 `json:"mse"`
	DirectionalAccuracy float64 `json:"directional_accuracy"`
}

// DirectionReport holds a direction classifier's scores
type DirectionReport struct {
	N         int             `json:"n"`
	Accuracy  float64         `json:"accuracy"`
	Confusion ConfusionMatrix `json:"confusion"` // [actual][predicted], 0=down 1=up
}

// Report is the full pipeline output consumed by the presentation layer
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`

	Rows []ReportRow `json:"rows"`

	// ReturnModel is nil when InsufficientData is set
	ReturnModel      *ReturnModelReport `json:"return_model,omitempty"`
	Direction        *DirectionReport   `json:"direction_model,omitempty"`
	DirectionRefined *DirectionReport   `json:"direction_model_refined,omitempty"`

	SentimentTrend []*float64 `json:"sentiment_trend,omitempty"`
	CloseTrend     []*float64 `json:"close_trend,omitempty"`

	Diagnostics        Diagnostics `json:"diagnostics"`
	InsufficientData   bool        `json:"insufficient_data"`
	InsufficientReason string      `json:"insufficient_reason,omitempty"`
}

// Run executes one full pass over the current data set
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	rows, err := p.signals.LoadRows(ctx)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "failed to load signal rows")
	}
	closes, err := p.prices.ListCloses(ctx)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "failed to load closing prices")
	}

	report := p.build(rows, closes)

	metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	p.recordDiagnostics(report)

	status := "success"
	if report.InsufficientData {
		status = "insufficient_data"
	}
	metrics.PipelineRuns.WithLabelValues(status).Inc()

	p.log.Infow("Pipeline run complete",
		"rows", len(report.Rows),
		"status", status,
		"excluded_next_close", report.Diagnostics.MissingNextClose,
		"excluded_zero_close", report.Diagnostics.ZeroClose,
	)
	return report, nil
}

// build is the pure in-memory portion, separated for testability
func (p *Pipeline) build(rows []signal.Row, closes []stockprice.DateClose) *Report {
	report := &Report{GeneratedAt: time.Now()}

	points := BuildSignals(rows)
	merged := BuildReturns(points, closes, &report.Diagnostics)

	sentiments := make([]float64, len(merged))
	returns := make([]float64, len(merged))
	closeSeries := make([]float64, len(merged))
	for i, r := range merged {
		sentiments[i] = r.Sentiment
		returns[i] = r.Return
		closeSeries[i] = r.Close
		if !finite(r.Sentiment) {
			report.Diagnostics.MissingSentiment++
		}
	}

	report.Rows = make([]ReportRow, len(merged))
	for i, r := range merged {
		report.Rows[i] = ReportRow{
			Date:           r.Date.Format("2006-01-02"),
			Sentiment:      fptr(r.Sentiment),
			Recommendation: string(r.Recommendation),
			Close:          r.Close,
			NextClose:      r.NextClose,
			Return:         r.Return,
		}
	}

	p.fitReturnModel(report, sentiments, returns)
	p.fitDirectionModels(report, merged, returns, closeSeries)
	p.buildTrends(report, sentiments, closeSeries)

	return report
}

func (p *Pipeline) fitReturnModel(report *Report, sentiments, returns []float64) {
	fit, err := FitLinear(sentiments, returns)
	if err != nil {
		report.InsufficientData = true
		report.InsufficientReason = err.Error()
		p.log.Warnw("Return model undefined", "reason", err)
		return
	}

	predicted := fit.PredictAll(sentiments)
	for i := range report.Rows {
		report.Rows[i].PredictedReturn = fptr(predicted[i])
	}

	// Score only rows that actually carry a prediction
	var actual, pred []float64
	for i := range predicted {
		if !finite(predicted[i]) {
			continue
		}
		actual = append(actual, returns[i])
		pred = append(pred, predicted[i])
	}

	model := &ReturnModelReport{
		Slope:     fit.Slope,
		Intercept: fit.Intercept,
		N:         fit.N,
	}
	if r2, err := RSquared(actual, pred); err == nil {
		model.R2 = r2
	}
	if mse, err := MeanSquaredError(actual, pred); err == nil {
		model.MSE = mse
	}
	if acc, err := DirectionalAccuracy(actual, pred); err == nil {
		model.DirectionalAccuracy = acc
	}
	report.ReturnModel = model
}

func (p *Pipeline) fitDirectionModels(report *Report, merged []ReturnPoint, returns, closeSeries []float64) {
	recScores := make([]float64, len(merged))
	ups := make([]bool, len(merged))
	for i, r := range merged {
		score, ok := r.Recommendation.Score()
		if !ok {
			report.Diagnostics.InvalidRec++
			recScores[i] = math.NaN()
		} else {
			recScores[i] = float64(score)
		}
		ups[i] = returns[i] > 0
	}

	// Single-feature logistic model: recommendation score to up/down
	if model, err := FitLogistic(recScores, ups); err == nil {
		var actual, predicted []bool
		for i, x := range recScores {
			if !finite(x) {
				continue
			}
			actual = append(actual, ups[i])
			predicted = append(predicted, model.Predict(x))
		}
		if confusion, err := Confusion(actual, predicted); err == nil {
			report.Direction = &DirectionReport{
				N:         len(actual),
				Accuracy:  confusion.Accuracy(),
				Confusion: confusion,
			}
		}
	} else {
		p.log.Debugw("Direction model undefined", "reason", err)
	}

	// Refined variant: adds a top-recommendation-in-quiet-markets flag and a
	// depth-bounded tree
	vol := VolatilityIndex(closeSeries, p.volWindow)
	lowVol := BelowMedianFlags(vol)

	features := make([][]float64, len(merged))
	for i := range merged {
		flag := 0.0
		if finite(recScores[i]) && recScores[i] >= 2 && lowVol[i] {
			flag = 1
		}
		features[i] = []float64{recScores[i], flag}
	}

	if tree, err := FitTree(features, ups, 2); err == nil {
		var actual, predicted []bool
		for i, row := range features {
			if !finiteRow(row) {
				continue
			}
			actual = append(actual, ups[i])
			predicted = append(predicted, tree.Predict(row))
		}
		if confusion, err := Confusion(actual, predicted); err == nil {
			report.DirectionRefined = &DirectionReport{
				N:         len(actual),
				Accuracy:  confusion.Accuracy(),
				Confusion: confusion,
			}
		}
	} else {
		p.log.Debugw("Refined direction model undefined", "reason", err)
	}
}

func (p *Pipeline) buildTrends(report *Report, sentiments, closeSeries []float64) {
	if trend, err := Trendline(sentiments); err == nil {
		report.SentimentTrend = fptrs(trend)
	}
	if trend, err := Trendline(closeSeries); err == nil {
		report.CloseTrend = fptrs(trend)
	}
}

func (p *Pipeline) recordDiagnostics(report *Report) {
	d := report.Diagnostics
	metrics.PipelineRowsExcluded.WithLabelValues("missing_next_close").Add(float64(d.MissingNextClose))
	metrics.PipelineRowsExcluded.WithLabelValues("zero_close").Add(float64(d.ZeroClose))
	metrics.PipelineRowsExcluded.WithLabelValues("missing_sentiment").Add(float64(d.MissingSentiment))
	metrics.PipelineRowsExcluded.WithLabelValues("invalid_recommendation").Add(float64(d.InvalidRec))
}

func fptr(v float64) *float64 {
	if !finite(v) {
		return nil
	}
	return &v
}

func fptrs(vs []float64) []*float64 {
	out := make([]*float64, len(vs))
	for i, v := range vs {
		out[i] = fptr(v)
	}
	return out
}
