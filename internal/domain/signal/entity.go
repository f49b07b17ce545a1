package signal

import (
	"time"

	"github.com/shopspring/decimal"

	"hermes/internal/domain/analysis"
)

// Row is the joined read model behind the correlation pipeline: one row per
// (article, analysis, price) triple where the article's publish date has a
// stored trading price. The join key is articles.publish_date =
// stock_prices.price_date; analyses.price_date is informational only.
type Row struct {
	Date           time.Time               `db:"date" json:"date"`
	SentimentScore float64                 `db:"sentiment_score" json:"sentiment_score"`
	SentimentLabel string                  `db:"sentiment_label" json:"sentiment_label"`
	Recommendation analysis.Recommendation `db:"recommendation" json:"recommendation"`
	Close          decimal.Decimal         `db:"close_price" json:"close_price"`
}

// BrowseRow is one line of the article browse view
type BrowseRow struct {
	ArticleID      int                     `db:"article_id" json:"article_id"`
	PublishDate    time.Time               `db:"publish_date" json:"publish_date"`
	Title          string                  `db:"title" json:"title"`
	SentimentScore float64                 `db:"sentiment_score" json:"sentiment_score"`
	Recommendation analysis.Recommendation `db:"recommendation" json:"recommendation"`
}
