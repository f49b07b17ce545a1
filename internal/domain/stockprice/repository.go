package stockprice

import (
	"context"
	"time"
)

// Repository defines the interface for stock price persistence
type Repository interface {
	// Upsert inserts or fully replaces the row for price.PriceDate
	Upsert(ctx context.Context, price *StockPrice) (*StockPrice, error)

	// GetByDate retrieves the price row for a trading date
	GetByDate(ctx context.Context, date time.Time) (*StockPrice, error)

	// ListCloses returns (date, close) pairs for all stored dates, ascending
	ListCloses(ctx context.Context) ([]DateClose, error)
}
