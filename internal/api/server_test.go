package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/analytics"
	"hermes/internal/domain/analysis"
	"hermes/internal/domain/article"
	"hermes/internal/domain/signal"
	"hermes/internal/domain/stockprice"
	"hermes/pkg/errors"
)

type fakeSignals struct {
	rows   []signal.Row
	browse []signal.BrowseRow
	err    error
}

func (f *fakeSignals) LoadRows(ctx context.Context) ([]signal.Row, error) { return f.rows, f.err }

func (f *fakeSignals) ListMissingPriceDates(ctx context.Context) ([]time.Time, error) {
	return nil, nil
}

func (f *fakeSignals) Browse(ctx context.Context, limit int) ([]signal.BrowseRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.browse) {
		return f.browse[:limit], nil
	}
	return f.browse, nil
}

type fakeArticles struct {
	byID map[int]*article.Article
}

func (f *fakeArticles) Upsert(ctx context.Context, url, title, body string, publishDate time.Time) (*article.Article, error) {
	return nil, errors.ErrInternal
}

func (f *fakeArticles) GetByID(ctx context.Context, id int) (*article.Article, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, errors.ErrNotFound
}

func (f *fakeArticles) ListPublishDates(ctx context.Context) ([]time.Time, error) { return nil, nil }

type fakeAnalyses struct {
	byArticle map[int][]*analysis.Analysis
}

func (f *fakeAnalyses) Insert(ctx context.Context, a *analysis.Analysis) error { return nil }

func (f *fakeAnalyses) ExistsForArticleOn(ctx context.Context, articleID int, day time.Time) (bool, error) {
	return false, nil
}

func (f *fakeAnalyses) ListByArticle(ctx context.Context, articleID int) ([]*analysis.Analysis, error) {
	return f.byArticle[articleID], nil
}

type fakePrices struct {
	closes []stockprice.DateClose
}

func (f *fakePrices) Upsert(ctx context.Context, p *stockprice.StockPrice) (*stockprice.StockPrice, error) {
	return p, nil
}

func (f *fakePrices) GetByDate(ctx context.Context, date time.Time) (*stockprice.StockPrice, error) {
	return nil, errors.ErrNotFound
}

func (f *fakePrices) ListCloses(ctx context.Context) ([]stockprice.DateClose, error) {
	return f.closes, nil
}

func fixtureSignals() *fakeSignals {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	closes := []float64{100, 102, 98}
	labels := []string{analysis.LabelPositive, analysis.LabelNegative, analysis.LabelPositive}
	scores := []float64{0.9, 0.4, 0.6}
	recs := []analysis.Recommendation{analysis.Buy, analysis.Sell, analysis.Hold}

	f := &fakeSignals{}
	for i := 0; i < 3; i++ {
		f.rows = append(f.rows, signal.Row{
			Date:           base.AddDate(0, 0, i),
			SentimentScore: scores[i],
			SentimentLabel: labels[i],
			Recommendation: recs[i],
			Close:          decimal.NewFromFloat(closes[i]),
		})
		f.browse = append(f.browse, signal.BrowseRow{
			ArticleID:      i + 1,
			PublishDate:    base.AddDate(0, 0, i),
			Title:          "article",
			SentimentScore: scores[i],
			Recommendation: recs[i],
		})
	}
	return f
}

func fixtureCloses() []stockprice.DateClose {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	out := make([]stockprice.DateClose, 3)
	for i, v := range []float64{100, 102, 98} {
		out[i] = stockprice.DateClose{PriceDate: base.AddDate(0, 0, i), Close: decimal.NewFromFloat(v)}
	}
	return out
}

func newTestServer(signals *fakeSignals, articles *fakeArticles, analyses *fakeAnalyses) *Server {
	return NewServer(Config{
		Addr:     ":0",
		Pipeline: analytics.NewPipeline(signals, &fakePrices{closes: fixtureCloses()}, 3),
		Articles: articles,
		Analyses: analyses,
		Signals:  signals,
	})
}

func doGet(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestBrowse(t *testing.T) {
	s := newTestServer(fixtureSignals(), &fakeArticles{}, &fakeAnalyses{})

	rec := doGet(t, s, "/browse")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Articles []signal.BrowseRow `json:"articles"`
		Count    int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Count)
	assert.Len(t, body.Articles, 3)
}

func TestBrowse_Limit(t *testing.T) {
	s := newTestServer(fixtureSignals(), &fakeArticles{}, &fakeAnalyses{})

	rec := doGet(t, s, "/browse?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)

	assert.Equal(t, http.StatusBadRequest, doGet(t, s, "/browse?limit=0").Code)
	assert.Equal(t, http.StatusBadRequest, doGet(t, s, "/browse?limit=abc").Code)
}

func TestArticleByID(t *testing.T) {
	pub := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	articles := &fakeArticles{byID: map[int]*article.Article{
		7: {ArticleID: 7, URL: "https://news.test/a", Title: "Chip rally", PublishDate: pub},
	}}
	analyses := &fakeAnalyses{byArticle: map[int][]*analysis.Analysis{
		7: {{AnalysisID: 1, ArticleID: 7, SentimentLabel: analysis.LabelPositive, SentimentScore: 0.9, Recommendation: analysis.Buy, Rationale: "ok"}},
	}}
	s := newTestServer(fixtureSignals(), articles, analyses)

	rec := doGet(t, s, "/articles/7")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Article  article.Article      `json:"article"`
		Analyses []*analysis.Analysis `json:"analyses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 7, body.Article.ArticleID)
	require.Len(t, body.Analyses, 1)
	assert.Equal(t, analysis.Buy, body.Analyses[0].Recommendation)
}

func TestArticleByID_NotFound(t *testing.T) {
	s := newTestServer(fixtureSignals(), &fakeArticles{}, &fakeAnalyses{})
	assert.Equal(t, http.StatusNotFound, doGet(t, s, "/articles/99").Code)
}

func TestArticleByID_BadID(t *testing.T) {
	s := newTestServer(fixtureSignals(), &fakeArticles{}, &fakeAnalyses{})
	assert.Equal(t, http.StatusBadRequest, doGet(t, s, "/articles/abc").Code)
	assert.Equal(t, http.StatusBadRequest, doGet(t, s, "/articles/-1").Code)
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(fixtureSignals(), &fakeArticles{}, &fakeAnalyses{})

	rec := doGet(t, s, "/analyze")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "miss", rec.Header().Get("X-Cache"), "no cache configured, every run is a miss")

	var report analytics.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report.Rows, 2, "last date has no next close")
	assert.Equal(t, 3, report.Diagnostics.InputRows)
	assert.False(t, report.InsufficientData)
	require.NotNil(t, report.ReturnModel)
	assert.Equal(t, 2, report.ReturnModel.N)
}

func TestAnalyze_PipelineFailure(t *testing.T) {
	s := newTestServer(&fakeSignals{err: errors.ErrUnavailable}, &fakeArticles{}, &fakeAnalyses{})
	assert.Equal(t, http.StatusInternalServerError, doGet(t, s, "/analyze").Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(fixtureSignals(), &fakeArticles{}, &fakeAnalyses{})
	assert.Equal(t, http.StatusOK, doGet(t, s, "/healthz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(fixtureSignals(), &fakeArticles{}, &fakeAnalyses{})
	rec := doGet(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}
