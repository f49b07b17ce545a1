package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"hermes/internal/domain/article"
)

// Compile-time check
var _ article.Repository = (*ArticleRepository)(nil)

// ArticleRepository implements article.Repository using sqlx
type ArticleRepository struct {
	db *sqlx.DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Upsert inserts a new article or updates the existing row keyed by URL.
// The conflict branch replaces title, body and publish date and refreshes
// fetched_at; article_id is preserved. Single statement, auto-commit.
func (r *ArticleRepository) Upsert(ctx context.Context, url, title, body string, publishDate time.Time) (*article.Article, error) {
	query := `
		INSERT INTO articles (url, title, body_text, publish_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			body_text = EXCLUDED.body_text,
			publish_date = EXCLUDED.publish_date,
			fetched_at = NOW()
		RETURNING article_id, url, title, body_text, publish_date, fetched_at`

	var art article.Article
	if err := r.db.GetContext(ctx, &art, query, url, title, body, publishDate); err != nil {
		return nil, mapError(err)
	}

	return &art, nil
}

// GetByID retrieves an article by ID
func (r *ArticleRepository) GetByID(ctx context.Context, id int) (*article.Article, error) {
	var art article.Article

	query := `SELECT * FROM articles WHERE article_id = $1`

	if err := r.db.GetContext(ctx, &art, query, id); err != nil {
		return nil, mapError(err)
	}

	return &art, nil
}

// ListPublishDates returns the distinct publish dates, ascending
func (r *ArticleRepository) ListPublishDates(ctx context.Context) ([]time.Time, error) {
	var dates []time.Time

	query := `SELECT DISTINCT publish_date FROM articles ORDER BY publish_date`

	if err := r.db.SelectContext(ctx, &dates, query); err != nil {
		return nil, mapError(err)
	}

	return dates, nil
}
