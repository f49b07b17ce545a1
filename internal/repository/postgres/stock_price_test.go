package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/domain/stockprice"
	"hermes/internal/testsupport"
)

func TestStockPriceRepository_Upsert_ReplacesWholeRow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewStockPriceRepository(testDB.DB())
	ctx := context.Background()

	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	first := &stockprice.StockPrice{
		PriceDate: date,
		Open:      decimal.NewFromFloat(99.5),
		Close:     decimal.NewFromFloat(100.0),
		High:      decimal.NewFromFloat(101.0),
		Low:       decimal.NewFromFloat(98.0),
		Volume:    1_000_000,
	}
	_, err := repo.Upsert(ctx, first)
	require.NoError(t, err)

	second := &stockprice.StockPrice{
		PriceDate: date,
		Open:      decimal.NewFromFloat(101.0),
		Close:     decimal.NewFromFloat(102.5),
		High:      decimal.NewFromFloat(103.0),
		Low:       decimal.NewFromFloat(100.5),
		Volume:    2_500_000,
	}
	stored, err := repo.Upsert(ctx, second)
	require.NoError(t, err)

	// Second upsert fully replaces the first, no merging of old fields
	assert.True(t, stored.Open.Equal(second.Open))
	assert.True(t, stored.Close.Equal(second.Close))
	assert.True(t, stored.High.Equal(second.High))
	assert.True(t, stored.Low.Equal(second.Low))
	assert.Equal(t, second.Volume, stored.Volume)

	var count int
	err = testDB.DB().Get(&count, `SELECT COUNT(*) FROM stock_prices WHERE price_date = $1`, date)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "at most one row per trading date")
}

func TestStockPriceRepository_GetByDate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewStockPriceRepository(testDB.DB())
	fixtures := NewTestFixtures(t, testDB.DB())
	ctx := context.Background()

	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	fixtures.CreatePrice(date, 105.25)

	price, err := repo.GetByDate(ctx, date)
	require.NoError(t, err)
	assert.True(t, price.Close.Equal(decimal.NewFromFloat(105.25)))
}

func TestStockPriceRepository_ListCloses_Ascending(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewStockPriceRepository(testDB.DB())
	fixtures := NewTestFixtures(t, testDB.DB())
	ctx := context.Background()

	base := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	closes := []float64{100, 102, 98}
	// Insert out of order to prove the query sorts
	fixtures.CreatePrice(base.AddDate(0, 0, 2), closes[2])
	fixtures.CreatePrice(base, closes[0])
	fixtures.CreatePrice(base.AddDate(0, 0, 1), closes[1])

	rows, err := repo.ListCloses(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for i, want := range closes {
		assert.Equal(t, base.AddDate(0, 0, i).Format("2006-01-02"), rows[i].PriceDate.Format("2006-01-02"))
		assert.True(t, rows[i].Close.Equal(decimal.NewFromFloat(want)))
	}
}
