package analytics

import (
	"math"
	"time"

	"hermes/internal/domain/stockprice"
)

// Diagnostics counts rows excluded at each pipeline stage. The numbers are
// surfaced in the report and mirrored into Prometheus counters so silent
// data loss is visible.
type Diagnostics struct {
	InputRows        int `json:"input_rows"`
	MissingNextClose int `json:"missing_next_close"`
	ZeroClose        int `json:"zero_close"`
	MissingSentiment int `json:"missing_sentiment"`
	InvalidRec       int `json:"invalid_recommendation"`
}

// nextClose pairs a trading date with the following trading day's close.
// The shift is positional over the sorted price series, not calendar-based:
// weekends and holidays never appear in the series, so the "next" row is
// simply the next trading day.
type nextClose struct {
	date time.Time
	next float64 // NaN for the final date in the series
}

// shiftCloses computes next-day closes over the ascending price series
func shiftCloses(closes []stockprice.DateClose) []nextClose {
	shifted := make([]nextClose, len(closes))
	for i, dc := range closes {
		nc := math.NaN()
		if i+1 < len(closes) {
			nc = closes[i+1].Close.InexactFloat64()
		}
		shifted[i] = nextClose{date: dc.PriceDate, next: nc}
	}
	return shifted
}

// dayKey normalizes a date for join purposes
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// BuildReturns left-merges the next-close series onto the signal points by
// date and computes the realized next-day return per row. Rows without a
// resolvable next close are dropped; rows with a zero close are dropped as a
// defined failure mode (a zero denominator would make the return infinite).
// Rows with missing sentiment are kept here and excluded at fit time.
func BuildReturns(points []SignalPoint, closes []stockprice.DateClose, diag *Diagnostics) []ReturnPoint {
	if diag == nil {
		diag = &Diagnostics{}
	}
	diag.InputRows = len(points)

	lookup := make(map[string]float64, len(closes))
	for _, nc := range shiftCloses(closes) {
		lookup[dayKey(nc.date)] = nc.next
	}

	out := make([]ReturnPoint, 0, len(points))
	for _, p := range points {
		next, ok := lookup[dayKey(p.Date)]
		if !ok || math.IsNaN(next) {
			diag.MissingNextClose++
			continue
		}
		if p.Close == 0 {
			diag.ZeroClose++
			continue
		}
		out = append(out, ReturnPoint{
			SignalPoint: p,
			NextClose:   next,
			Return:      next/p.Close - 1,
		})
	}
	return out
}
