package signal

import (
	"context"
	"time"
)

// Repository defines the read side consumed by the correlation pipeline
// and the browse views.
type Repository interface {
	// LoadRows returns the joined signal rows ordered ascending by date.
	// Dates without a stored price are excluded (inner join).
	LoadRows(ctx context.Context) ([]Row, error)

	// ListMissingPriceDates returns distinct article publish dates that have
	// no stock price row yet, ascending.
	ListMissingPriceDates(ctx context.Context) ([]time.Time, error)

	// Browse returns articles with their analyses, newest first
	Browse(ctx context.Context, limit int) ([]BrowseRow, error)
}
