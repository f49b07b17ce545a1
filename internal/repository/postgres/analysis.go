package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"hermes/internal/domain/analysis"
)

// Compile-time check
var _ analysis.Repository = (*AnalysisRepository)(nil)

// AnalysisRepository implements analysis.Repository using sqlx
type AnalysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *sqlx.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Insert appends a new analysis row. Analyses are insert-only; an article
// accumulates one row per processing pass.
func (r *AnalysisRepository) Insert(ctx context.Context, a *analysis.Analysis) error {
	query := `
		INSERT INTO analyses (
			article_id, sentiment_label, sentiment_score,
			recommendation, rationale, price_date
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING analysis_id, analysis_date`

	err := r.db.QueryRowxContext(ctx, query,
		a.ArticleID, a.SentimentLabel, a.SentimentScore,
		a.Recommendation, a.Rationale, a.PriceDate,
	).Scan(&a.AnalysisID, &a.AnalysisDate)

	return mapError(err)
}

// ExistsForArticleOn reports whether the article has an analysis dated on
// the given calendar day.
func (r *AnalysisRepository) ExistsForArticleOn(ctx context.Context, articleID int, day time.Time) (bool, error) {
	var exists bool

	query := `
		SELECT EXISTS (
			SELECT 1 FROM analyses
			WHERE article_id = $1 AND analysis_date::date = $2::date
		)`

	if err := r.db.GetContext(ctx, &exists, query, articleID, day); err != nil {
		return false, mapError(err)
	}

	return exists, nil
}

// ListByArticle returns all analyses for an article, newest first
func (r *AnalysisRepository) ListByArticle(ctx context.Context, articleID int) ([]*analysis.Analysis, error) {
	var rows []*analysis.Analysis

	query := `
		SELECT * FROM analyses
		WHERE article_id = $1
		ORDER BY analysis_date DESC`

	if err := r.db.SelectContext(ctx, &rows, query, articleID); err != nil {
		return nil, mapError(err)
	}

	return rows, nil
}
