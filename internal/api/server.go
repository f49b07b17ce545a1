package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hermes/internal/adapters/redis"
	"hermes/internal/analytics"
	"hermes/internal/domain/analysis"
	"hermes/internal/domain/article"
	"hermes/internal/domain/signal"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

const (
	defaultBrowseLimit = 100
	maxBrowseLimit     = 500

	reportCacheKey = "analytics:report"
)

// Pinger reports backend connectivity for the health endpoint
type Pinger interface {
	Health(ctx context.Context) error
}

// Server exposes the read API over HTTP
type Server struct {
	engine   *gin.Engine
	http     *http.Server
	pipeline *analytics.Pipeline
	articles article.Repository
	analyses analysis.Repository
	signals  signal.Repository
	cache    *redis.Client
	cacheTTL time.Duration
	db       Pinger
	log      *logger.Logger
}

// Config bundles the server dependencies
type Config struct {
	Addr     string
	Env      string
	Pipeline *analytics.Pipeline
	Articles article.Repository
	Analyses analysis.Repository
	Signals  signal.Repository
	Cache    *redis.Client
	CacheTTL time.Duration
	DB       Pinger
}

// NewServer builds the router and wires all routes
func NewServer(cfg Config) *Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:   gin.New(),
		pipeline: cfg.Pipeline,
		articles: cfg.Articles,
		analyses: cfg.Analyses,
		signals:  cfg.Signals,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		db:       cfg.DB,
		log:      logger.Get().With("component", "api"),
	}
	s.engine.Use(gin.Recovery(), s.requestLog())

	s.engine.GET("/browse", s.browse)
	s.engine.GET("/articles/:id", s.articleByID)
	s.engine.GET("/analyze", s.analyze)
	s.engine.GET("/healthz", s.healthz)
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router returns the underlying handler, used by tests
func (s *Server) Router() http.Handler {
	return s.engine
}

// Run serves until the listener fails or Shutdown is called
func (s *Server) Run() error {
	s.log.Infow("HTTP server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debugw("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// browse lists articles with their latest analysis, newest first
func (s *Server) browse(c *gin.Context) {
	limit := defaultBrowseLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	if limit > maxBrowseLimit {
		limit = maxBrowseLimit
	}

	rows, err := s.signals.Browse(c.Request.Context(), limit)
	if err != nil {
		s.log.Errorw("Browse query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load articles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": rows, "count": len(rows)})
}

// articleByID returns one article with all of its analyses
func (s *Server) articleByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}

	art, err := s.articles.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		s.log.Errorw("Article lookup failed", "article_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load article"})
		return
	}

	analyses, err := s.analyses.ListByArticle(c.Request.Context(), id)
	if err != nil {
		s.log.Errorw("Analyses lookup failed", "article_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analyses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": art, "analyses": analyses})
}

// analyze runs the correlation pipeline, serving a cached report when fresh.
// ?refresh=true bypasses the cache.
func (s *Server) analyze(c *gin.Context) {
	ctx := c.Request.Context()
	refresh := c.Query("refresh") == "true"

	if s.cache != nil && !refresh {
		var cached analytics.Report
		err := s.cache.Get(ctx, reportCacheKey, &cached)
		if err == nil {
			c.Header("X-Cache", "hit")
			c.JSON(http.StatusOK, &cached)
			return
		}
		if !redis.IsNil(err) {
			s.log.Warnw("Report cache read failed", "error", err)
		}
	}

	report, err := s.pipeline.Run(ctx)
	if err != nil {
		s.log.Errorw("Pipeline run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, reportCacheKey, report, s.cacheTTL); err != nil {
			s.log.Warnw("Report cache write failed", "error", err)
		}
	}

	c.Header("X-Cache", "miss")
	c.JSON(http.StatusOK, report)
}

// healthz checks backend connectivity
func (s *Server) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := gin.H{"status": "ok"}
	code := http.StatusOK

	if s.db != nil {
		if err := s.db.Health(ctx); err != nil {
			status["status"] = "degraded"
			status["postgres"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	if s.cache != nil {
		if err := s.cache.Health(ctx); err != nil {
			status["status"] = "degraded"
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, status)
}
