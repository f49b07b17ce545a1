package stockprice

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockPrice is one trading day of OHLCV data, keyed by date.
// Re-fetching a date replaces the whole row.
type StockPrice struct {
	PriceDate time.Time       `db:"price_date" json:"price_date"`
	Open      decimal.Decimal `db:"open_price" json:"open"`
	Close     decimal.Decimal `db:"close_price" json:"close"`
	High      decimal.Decimal `db:"high_price" json:"high"`
	Low       decimal.Decimal `db:"low_price" json:"low"`
	Volume    int64           `db:"volume" json:"volume"`
}

// DateClose pairs a trading date with its closing price, used by the
// next-close shift in the return pipeline.
type DateClose struct {
	PriceDate time.Time       `db:"price_date" json:"price_date"`
	Close     decimal.Decimal `db:"close_price" json:"close"`
}
