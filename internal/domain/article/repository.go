package article

import (
	"context"
	"time"
)

// Repository defines the interface for article persistence
type Repository interface {
	// Upsert inserts a new article or, when the URL is already known, updates
	// title, body and publish date and refreshes the fetch timestamp.
	// Returns the persisted row either way.
	Upsert(ctx context.Context, url, title, body string, publishDate time.Time) (*Article, error)

	// GetByID retrieves an article by its ID
	GetByID(ctx context.Context, id int) (*Article, error)

	// ListPublishDates returns the distinct publish dates, ascending
	ListPublishDates(ctx context.Context) ([]time.Time, error)
}
