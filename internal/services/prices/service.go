package prices

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"hermes/internal/domain/signal"
	"hermes/internal/domain/stockprice"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Quote is one trading day of OHLCV data as returned by a price source
type Quote struct {
	Date   time.Time
	Open   decimal.Decimal
	Close  decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Volume int64
}

// PriceSource fetches daily OHLCV data for a symbol. A date with no trading
// activity returns ErrNotFound.
type PriceSource interface {
	FetchDaily(ctx context.Context, symbol string, date time.Time) (*Quote, error)
}

// Service fetches and stores daily stock prices
type Service struct {
	source  PriceSource
	prices  stockprice.Repository
	signals signal.Repository
	symbol  string
	log     *logger.Logger
}

// NewService creates a price service for one symbol
func NewService(source PriceSource, prices stockprice.Repository, signals signal.Repository, symbol string) *Service {
	return &Service{
		source:  source,
		prices:  prices,
		signals: signals,
		symbol:  symbol,
		log:     logger.Get().With("component", "price_service", "symbol", symbol),
	}
}

// FetchDate fetches one trading day and stores it, replacing any existing
// row for that date.
func (s *Service) FetchDate(ctx context.Context, date time.Time) (*stockprice.StockPrice, error) {
	quote, err := s.source.FetchDaily(ctx, s.symbol, date)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrapf(errors.ErrPriceFetch, "%s on %s: %v", s.symbol, date.Format("2006-01-02"), err)
	}

	return s.prices.Upsert(ctx, &stockprice.StockPrice{
		PriceDate: quote.Date,
		Open:      quote.Open,
		Close:     quote.Close,
		High:      quote.High,
		Low:       quote.Low,
		Volume:    quote.Volume,
	})
}

// BackfillResult summarizes one backfill pass
type BackfillResult struct {
	Missing  int `json:"missing"`
	Filled   int `json:"filled"`
	NoQuote  int `json:"no_quote"`
	Failed   int `json:"failed"`
}

// BackfillMissing fetches prices for every article publish date that has no
// stored price yet. Dates without a quote (weekends, holidays) are counted
// and left missing; fetch failures are logged per date and do not stop the
// pass.
func (s *Service) BackfillMissing(ctx context.Context) (*BackfillResult, error) {
	dates, err := s.signals.ListMissingPriceDates(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list missing price dates")
	}

	result := &BackfillResult{Missing: len(dates)}
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if _, err := s.FetchDate(ctx, date); err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				result.NoQuote++
				continue
			}
			s.log.Errorw("Failed to backfill price", "date", date.Format("2006-01-02"), "error", err)
			result.Failed++
			continue
		}
		result.Filled++
	}

	s.log.Infow("Price backfill complete",
		"missing", result.Missing,
		"filled", result.Filled,
		"no_quote", result.NoQuote,
		"failed", result.Failed,
	)
	return result, nil
}
