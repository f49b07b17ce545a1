package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"hermes/internal/domain/signal"
)

// Compile-time check
var _ signal.Repository = (*SignalRepository)(nil)

// SignalRepository implements the joined read model behind the correlation
// pipeline and the browse views.
type SignalRepository struct {
	db *sqlx.DB
}

// NewSignalRepository creates a new signal repository
func NewSignalRepository(db *sqlx.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

// LoadRows returns one row per (article, analysis, price) triple where the
// article's publish date has a stored price, ascending by date. The join key
// is articles.publish_date = stock_prices.price_date.
func (r *SignalRepository) LoadRows(ctx context.Context) ([]signal.Row, error) {
	var rows []signal.Row

	query := `
		SELECT
			a.publish_date AS date,
			an.sentiment_score,
			an.sentiment_label,
			an.recommendation,
			sp.close_price
		FROM articles a
		JOIN analyses an ON an.article_id = a.article_id
		JOIN stock_prices sp ON sp.price_date = a.publish_date
		ORDER BY a.publish_date`

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, mapError(err)
	}

	return rows, nil
}

// ListMissingPriceDates returns distinct article publish dates with no
// stored price row, ascending. Feeds the price backfill.
func (r *SignalRepository) ListMissingPriceDates(ctx context.Context) ([]time.Time, error) {
	var dates []time.Time

	query := `
		SELECT DISTINCT a.publish_date
		FROM articles a
		LEFT JOIN stock_prices sp ON sp.price_date = a.publish_date
		WHERE sp.price_date IS NULL
		ORDER BY a.publish_date`

	if err := r.db.SelectContext(ctx, &dates, query); err != nil {
		return nil, mapError(err)
	}

	return dates, nil
}

// Browse returns articles joined with their analyses, newest first
func (r *SignalRepository) Browse(ctx context.Context, limit int) ([]signal.BrowseRow, error) {
	var rows []signal.BrowseRow

	query := `
		SELECT
			a.article_id,
			a.publish_date,
			a.title,
			an.sentiment_score,
			an.recommendation
		FROM articles a
		JOIN analyses an ON an.article_id = a.article_id
		ORDER BY a.publish_date DESC
		LIMIT $1`

	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, mapError(err)
	}

	return rows, nil
}
