package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"hermes/internal/domain/analysis"
	"hermes/internal/domain/stockprice"
)

// TestFixtures provides factory helpers for repository integration tests
type TestFixtures struct {
	t  *testing.T
	db *sqlx.DB
}

// NewTestFixtures creates a fixtures factory
func NewTestFixtures(t *testing.T, db *sqlx.DB) *TestFixtures {
	t.Helper()
	return &TestFixtures{t: t, db: db}
}

// CreateArticle inserts an article for the given publish date and returns its ID
func (f *TestFixtures) CreateArticle(publishDate time.Time) int {
	f.t.Helper()

	repo := NewArticleRepository(f.db)
	url := fmt.Sprintf("https://news.example.com/%d-%s", time.Now().UnixNano(), publishDate.Format("2006-01-02"))

	art, err := repo.Upsert(context.Background(), url, "fixture article", "fixture body", publishDate)
	if err != nil {
		f.t.Fatalf("fixture article insert failed: %v", err)
	}
	return art.ArticleID
}

// CreateAnalysis inserts an analysis for the article and returns it
func (f *TestFixtures) CreateAnalysis(articleID int, label string, score float64, rec analysis.Recommendation) *analysis.Analysis {
	f.t.Helper()

	repo := NewAnalysisRepository(f.db)
	a := &analysis.Analysis{
		ArticleID:      articleID,
		SentimentLabel: label,
		SentimentScore: score,
		Recommendation: rec,
		Rationale:      "fixture rationale",
	}
	if err := repo.Insert(context.Background(), a); err != nil {
		f.t.Fatalf("fixture analysis insert failed: %v", err)
	}
	return a
}

// CreatePrice upserts a stock price row for the date with the given close
func (f *TestFixtures) CreatePrice(date time.Time, close float64) *stockprice.StockPrice {
	f.t.Helper()

	repo := NewStockPriceRepository(f.db)
	price := &stockprice.StockPrice{
		PriceDate: date,
		Open:      decimal.NewFromFloat(close * 0.99),
		Close:     decimal.NewFromFloat(close),
		High:      decimal.NewFromFloat(close * 1.01),
		Low:       decimal.NewFromFloat(close * 0.98),
		Volume:    1_000_000,
	}
	stored, err := repo.Upsert(context.Background(), price)
	if err != nil {
		f.t.Fatalf("fixture price upsert failed: %v", err)
	}
	return stored
}
