package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/domain/analysis"
	"hermes/internal/testsupport"
	"hermes/pkg/errors"
)

func TestAnalysisRepository_Insert(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewAnalysisRepository(testDB.DB())
	fixtures := NewTestFixtures(t, testDB.DB())
	ctx := context.Background()

	articleID := fixtures.CreateArticle(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))

	a := &analysis.Analysis{
		ArticleID:      articleID,
		SentimentLabel: analysis.LabelPositive,
		SentimentScore: 0.93,
		Recommendation: analysis.Buy,
		Rationale:      "strong quarter ahead",
	}

	err := repo.Insert(ctx, a)
	require.NoError(t, err, "Insert should not return error")
	assert.NotZero(t, a.AnalysisID)
	assert.False(t, a.AnalysisDate.IsZero())
}

func TestAnalysisRepository_Insert_UnknownArticle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewAnalysisRepository(testDB.DB())

	a := &analysis.Analysis{
		ArticleID:      424242,
		SentimentLabel: analysis.LabelNegative,
		SentimentScore: 0.5,
		Recommendation: analysis.Sell,
	}

	err := repo.Insert(context.Background(), a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForeignKey))
}

func TestAnalysisRepository_AnalysesAccumulate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewAnalysisRepository(testDB.DB())
	fixtures := NewTestFixtures(t, testDB.DB())
	ctx := context.Background()

	articleID := fixtures.CreateArticle(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	fixtures.CreateAnalysis(articleID, analysis.LabelPositive, 0.8, analysis.Buy)
	fixtures.CreateAnalysis(articleID, analysis.LabelNegative, 0.6, analysis.Hold)

	rows, err := repo.ListByArticle(ctx, articleID)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "analyses are insert-only and accumulate")
}

func TestAnalysisRepository_ExistsForArticleOn(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewAnalysisRepository(testDB.DB())
	fixtures := NewTestFixtures(t, testDB.DB())
	ctx := context.Background()

	articleID := fixtures.CreateArticle(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))

	exists, err := repo.ExistsForArticleOn(ctx, articleID, time.Now())
	require.NoError(t, err)
	assert.False(t, exists)

	fixtures.CreateAnalysis(articleID, analysis.LabelPositive, 0.7, analysis.Buy)

	exists, err = repo.ExistsForArticleOn(ctx, articleID, time.Now())
	require.NoError(t, err)
	assert.True(t, exists)

	// A different day does not match
	exists, err = repo.ExistsForArticleOn(ctx, articleID, time.Now().AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAnalysisRepository_CascadeDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewAnalysisRepository(testDB.DB())
	fixtures := NewTestFixtures(t, testDB.DB())
	ctx := context.Background()

	articleID := fixtures.CreateArticle(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	fixtures.CreateAnalysis(articleID, analysis.LabelPositive, 0.8, analysis.Buy)

	_, err := testDB.DB().Exec(`DELETE FROM articles WHERE article_id = $1`, articleID)
	require.NoError(t, err)

	rows, err := repo.ListByArticle(ctx, articleID)
	require.NoError(t, err)
	assert.Empty(t, rows, "deleting an article cascades to its analyses")
}
