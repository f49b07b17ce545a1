package analysis

import (
	"time"
)

// Recommendation is the closed 5-value ordinal trade recommendation scale
type Recommendation string

const (
	StrongSell Recommendation = "strong_sell"
	Sell       Recommendation = "sell"
	Hold       Recommendation = "hold"
	Buy        Recommendation = "buy"
	StrongBuy  Recommendation = "strong_buy"
)

// FallbackRationale marks analyses whose recommendation was substituted
// after a collaborator failure.
const FallbackRationale = "fallback due to error"

// Valid reports whether r is one of the five known values
func (r Recommendation) Valid() bool {
	switch r {
	case StrongSell, Sell, Hold, Buy, StrongBuy:
		return true
	}
	return false
}

// Score maps the ordinal scale onto integers, strong_sell=-2 through
// strong_buy=+2. ok is false for unknown values.
func (r Recommendation) Score() (score int, ok bool) {
	switch r {
	case StrongSell:
		return -2, true
	case Sell:
		return -1, true
	case Hold:
		return 0, true
	case Buy:
		return 1, true
	case StrongBuy:
		return 2, true
	}
	return 0, false
}

// Sentiment labels as produced by the sentiment collaborator
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
	LabelNeutral  = "NEUTRAL"
)

// Analysis is one sentiment/recommendation pass over an article.
// An article accumulates analyses over time; rows are never updated.
type Analysis struct {
	AnalysisID     int            `db:"analysis_id" json:"analysis_id"`
	ArticleID      int            `db:"article_id" json:"article_id"`
	SentimentLabel string         `db:"sentiment_label" json:"sentiment_label"`
	SentimentScore float64        `db:"sentiment_score" json:"sentiment_score"`
	Recommendation Recommendation `db:"recommendation" json:"recommendation"`
	Rationale      string         `db:"rationale" json:"rationale"`
	AnalysisDate   time.Time      `db:"analysis_date" json:"analysis_date"`
	PriceDate      *time.Time     `db:"price_date" json:"price_date,omitempty"`
}

// IsFallback reports whether this analysis was produced by the error-recovery
// path rather than a live recommendation.
func (a *Analysis) IsFallback() bool {
	return a.Rationale == FallbackRationale
}
