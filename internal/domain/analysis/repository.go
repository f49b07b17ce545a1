package analysis

import (
	"context"
	"time"
)

// Repository defines the interface for analysis persistence
type Repository interface {
	// Insert appends a new analysis for an article. Referencing an unknown
	// article surfaces a foreign key persistence error.
	Insert(ctx context.Context, a *Analysis) error

	// ExistsForArticleOn reports whether the article already has an analysis
	// dated on the given calendar day.
	ExistsForArticleOn(ctx context.Context, articleID int, day time.Time) (bool, error)

	// ListByArticle returns all analyses for an article, newest first
	ListByArticle(ctx context.Context, articleID int) ([]*Analysis, error)
}
