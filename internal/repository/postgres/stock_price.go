package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"hermes/internal/domain/stockprice"
)

// Compile-time check
var _ stockprice.Repository = (*StockPriceRepository)(nil)

// StockPriceRepository implements stockprice.Repository using sqlx
type StockPriceRepository struct {
	db *sqlx.DB
}

// NewStockPriceRepository creates a new stock price repository
func NewStockPriceRepository(db *sqlx.DB) *StockPriceRepository {
	return &StockPriceRepository{db: db}
}

// Upsert inserts or fully replaces the OHLCV row for price.PriceDate.
// No merging of old and new fields: the conflict branch overwrites every
// value column.
func (r *StockPriceRepository) Upsert(ctx context.Context, price *stockprice.StockPrice) (*stockprice.StockPrice, error) {
	query := `
		INSERT INTO stock_prices (
			price_date, open_price, close_price, high_price, low_price, volume
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (price_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			close_price = EXCLUDED.close_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			volume = EXCLUDED.volume
		RETURNING price_date, open_price, close_price, high_price, low_price, volume`

	var stored stockprice.StockPrice
	err := r.db.GetContext(ctx, &stored, query,
		price.PriceDate, price.Open, price.Close, price.High, price.Low, price.Volume,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return &stored, nil
}

// GetByDate retrieves the price row for a trading date
func (r *StockPriceRepository) GetByDate(ctx context.Context, date time.Time) (*stockprice.StockPrice, error) {
	var price stockprice.StockPrice

	query := `SELECT * FROM stock_prices WHERE price_date = $1`

	if err := r.db.GetContext(ctx, &price, query, date); err != nil {
		return nil, mapError(err)
	}

	return &price, nil
}

// ListCloses returns (date, close) pairs ascending by date. This is the
// series the return pipeline shifts to obtain next-day closes.
func (r *StockPriceRepository) ListCloses(ctx context.Context) ([]stockprice.DateClose, error) {
	var closes []stockprice.DateClose

	query := `SELECT price_date, close_price FROM stock_prices ORDER BY price_date`

	if err := r.db.SelectContext(ctx, &closes, query); err != nil {
		return nil, mapError(err)
	}

	return closes, nil
}
