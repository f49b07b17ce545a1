package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/domain/analysis"
	"hermes/internal/testsupport"
)

func TestSignalRepository_LoadRows_InnerJoinByPublishDate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewSignalRepository(testDB.DB())
	fixtures := NewTestFixtures(t, testDB.DB())
	ctx := context.Background()

	priced := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	unpriced := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)

	pricedArticle := fixtures.CreateArticle(priced)
	fixtures.CreateAnalysis(pricedArticle, analysis.LabelPositive, 0.9, analysis.Buy)
	fixtures.CreatePrice(priced, 100)

	unpricedArticle := fixtures.CreateArticle(unpriced)
	fixtures.CreateAnalysis(unpricedArticle, analysis.LabelNegative, 0.4, analysis.Sell)

	rows, err := repo.LoadRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1, "dates without a stored price are excluded")
	assert.Equal(t, priced.Format("2006-01-02"), rows[0].Date.Format("2006-01-02"))
	assert.Equal(t, analysis.LabelPositive, rows[0].SentimentLabel)
	assert.InDelta(t, 0.9, rows[0].SentimentScore, 1e-9)
	assert.Equal(t, analysis.Buy, rows[0].Recommendation)
}

func TestSignalRepository_LoadRows_OrderedAscending(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewSignalRepository(testDB.DB())
	fixtures := NewTestFixtures(t, testDB.DB())
	ctx := context.Background()

	base := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	for _, offset := range []int{2, 0, 1} {
		day := base.AddDate(0, 0, offset)
		id := fixtures.CreateArticle(day)
		fixtures.CreateAnalysis(id, analysis.LabelPositive, 0.5, analysis.Hold)
		fixtures.CreatePrice(day, 100+float64(offset))
	}

	rows, err := repo.LoadRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i].Date.Before(rows[i-1].Date), "rows must be ascending by date")
	}
}

func TestSignalRepository_ListMissingPriceDates(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewSignalRepository(testDB.DB())
	fixtures := NewTestFixtures(t, testDB.DB())
	ctx := context.Background()

	priced := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	missing := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)

	fixtures.CreateArticle(priced)
	fixtures.CreatePrice(priced, 100)
	fixtures.CreateArticle(missing)
	fixtures.CreateArticle(missing) // duplicate date collapses

	dates, err := repo.ListMissingPriceDates(ctx)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, missing.Format("2006-01-02"), dates[0].Format("2006-01-02"))
}

func TestSignalRepository_Browse_NewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewSignalRepository(testDB.DB())
	fixtures := NewTestFixtures(t, testDB.DB())
	ctx := context.Background()

	older := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)

	olderID := fixtures.CreateArticle(older)
	fixtures.CreateAnalysis(olderID, analysis.LabelPositive, 0.6, analysis.Buy)
	newerID := fixtures.CreateArticle(newer)
	fixtures.CreateAnalysis(newerID, analysis.LabelNegative, 0.3, analysis.Sell)

	rows, err := repo.Browse(ctx, 50)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newerID, rows[0].ArticleID)
	assert.Equal(t, olderID, rows[1].ArticleID)
}
