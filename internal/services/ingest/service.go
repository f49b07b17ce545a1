package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"hermes/internal/domain/analysis"
	"hermes/internal/domain/article"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// FetchedArticle is one article as returned by a news source, before it has
// a database identity.
type FetchedArticle struct {
	URL         string
	Title       string
	BodyText    string
	PublishDate time.Time
}

// NewsSource fetches recent articles for a topic
type NewsSource interface {
	FetchArticles(ctx context.Context, topic string, limit int) ([]FetchedArticle, error)
}

// Sentiment is a polarity label with a confidence score in [0, 1]
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SentimentAnalyzer classifies a text's polarity
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (*Sentiment, error)
}

// Advice is a trade recommendation with its reasoning
type Advice struct {
	Recommendation analysis.Recommendation `json:"recommendation"`
	Rationale      string                  `json:"rationale"`
}

// Recommender produces a trade recommendation from an article and its
// sentiment.
type Recommender interface {
	Recommend(ctx context.Context, title, body string, sentiment Sentiment) (*Advice, error)
}

// Options bound a single ingest batch
type Options struct {
	Topic     string
	BatchSize int
	MaxChars  int // sentiment input truncation, 0 disables
}

// Service runs the fetch-analyze-store ingest flow. Collaborator failures
// degrade individual articles (neutral sentiment, hold recommendation)
// instead of failing the batch; only the news fetch itself is fatal.
type Service struct {
	news        NewsSource
	analyzer    SentimentAnalyzer
	recommender Recommender
	articles    article.Repository
	analyses    analysis.Repository
	opts        Options
	log         *logger.Logger
}

// NewService creates an ingest service
func NewService(
	news NewsSource,
	analyzer SentimentAnalyzer,
	recommender Recommender,
	articles article.Repository,
	analyses analysis.Repository,
	opts Options,
) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	return &Service{
		news:        news,
		analyzer:    analyzer,
		recommender: recommender,
		articles:    articles,
		analyses:    analyses,
		opts:        opts,
		log:         logger.Get().With("component", "ingest_service"),
	}
}

// BatchResult summarizes one ingest run
type BatchResult struct {
	BatchID   uuid.UUID `json:"batch_id"`
	Fetched   int       `json:"fetched"`
	Analyzed  int       `json:"analyzed"`
	Skipped   int       `json:"skipped"`
	Fallbacks int       `json:"fallbacks"`
	Failed    int       `json:"failed"`
}

// RunBatch fetches one batch of articles and analyzes each of them.
// An article already analyzed today is skipped, so re-running within a day
// is idempotent at the analysis level (article content is still refreshed).
func (s *Service) RunBatch(ctx context.Context) (*BatchResult, error) {
	result := &BatchResult{BatchID: uuid.New()}
	log := s.log.With("batch_id", result.BatchID.String())

	fetched, err := s.news.FetchArticles(ctx, s.opts.Topic, s.opts.BatchSize)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNewsFetch, "topic %q: %v", s.opts.Topic, err)
	}
	result.Fetched = len(fetched)
	log.Infow("Fetched articles", "topic", s.opts.Topic, "count", len(fetched))

	for _, fa := range fetched {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		stored, err := s.articles.Upsert(ctx, fa.URL, fa.Title, fa.BodyText, fa.PublishDate)
		if err != nil {
			log.Errorw("Failed to store article", "url", fa.URL, "error", err)
			result.Failed++
			metrics.ArticlesIngested.WithLabelValues("error").Inc()
			continue
		}

		exists, err := s.analyses.ExistsForArticleOn(ctx, stored.ArticleID, time.Now())
		if err != nil {
			log.Errorw("Failed to check existing analysis", "article_id", stored.ArticleID, "error", err)
			result.Failed++
			metrics.ArticlesIngested.WithLabelValues("error").Inc()
			continue
		}
		if exists {
			result.Skipped++
			metrics.ArticlesIngested.WithLabelValues("skipped").Inc()
			continue
		}

		a := s.analyze(ctx, log, stored, fa.BodyText, result)
		if err := s.analyses.Insert(ctx, a); err != nil {
			log.Errorw("Failed to store analysis", "article_id", stored.ArticleID, "error", err)
			result.Failed++
			metrics.ArticlesIngested.WithLabelValues("error").Inc()
			continue
		}
		result.Analyzed++
		metrics.ArticlesIngested.WithLabelValues("analyzed").Inc()
	}

	log.Infow("Ingest batch complete",
		"fetched", result.Fetched,
		"analyzed", result.Analyzed,
		"skipped", result.Skipped,
		"fallbacks", result.Fallbacks,
		"failed", result.Failed,
	)
	return result, nil
}

// analyze runs the sentiment and recommendation collaborators for one
// article, substituting degraded values on failure.
func (s *Service) analyze(ctx context.Context, log *logger.Logger, art *article.Article, body string, result *BatchResult) *analysis.Analysis {
	sentiment := Sentiment{Label: analysis.LabelNeutral, Score: 0}
	if got, err := s.analyzer.Analyze(ctx, truncate(body, s.opts.MaxChars)); err != nil {
		log.Warnw("Sentiment analysis failed, using neutral", "article_id", art.ArticleID, "error", err)
	} else {
		sentiment = *got
	}

	advice := Advice{Recommendation: analysis.Hold, Rationale: analysis.FallbackRationale}
	if got, err := s.recommender.Recommend(ctx, art.Title, body, sentiment); err != nil {
		log.Warnw("Recommendation failed, using fallback hold", "article_id", art.ArticleID, "error", err)
		result.Fallbacks++
		metrics.RecommendationFallbacks.Inc()
	} else {
		advice = *got
	}

	priceDate := art.PublishDate
	return &analysis.Analysis{
		ArticleID:      art.ArticleID,
		SentimentLabel: sentiment.Label,
		SentimentScore: sentiment.Score,
		Recommendation: advice.Recommendation,
		Rationale:      advice.Rationale,
		PriceDate:      &priceDate,
	}
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
