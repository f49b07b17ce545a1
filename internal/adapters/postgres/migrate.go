package postgres

import (
	"context"

	"hermes/pkg/errors"
)

// schema holds the idempotent DDL for the article/analysis/price tables.
// Statements use IF NOT EXISTS so Migrate is safe to run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
		article_id   SERIAL PRIMARY KEY,
		url          TEXT NOT NULL UNIQUE,
		title        TEXT NOT NULL,
		body_text    TEXT NOT NULL,
		publish_date DATE NOT NULL,
		fetched_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS analyses (
		analysis_id     SERIAL PRIMARY KEY,
		article_id      INTEGER NOT NULL REFERENCES articles(article_id) ON DELETE CASCADE,
		sentiment_label VARCHAR(32),
		sentiment_score DOUBLE PRECISION NOT NULL,
		recommendation  VARCHAR(16) NOT NULL,
		rationale       TEXT,
		analysis_date   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		price_date      DATE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_article_id ON analyses(article_id)`,
	`CREATE TABLE IF NOT EXISTS stock_prices (
		price_date  DATE PRIMARY KEY,
		open_price  NUMERIC(12,4),
		close_price NUMERIC(12,4),
		high_price  NUMERIC(12,4),
		low_price   NUMERIC(12,4),
		volume      BIGINT
	)`,
}

// Migrate applies the schema, creating missing tables and indexes.
func (c *Client) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to apply schema")
		}
	}
	return nil
}
