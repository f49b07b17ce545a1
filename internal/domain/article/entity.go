package article

import "time"

// Article is a news article keyed by its source URL.
// Re-ingesting the same URL updates content in place rather than duplicating.
type Article struct {
	ArticleID   int       `db:"article_id" json:"article_id"`
	URL         string    `db:"url" json:"url"`
	Title       string    `db:"title" json:"title"`
	BodyText    string    `db:"body_text" json:"body_text"`
	PublishDate time.Time `db:"publish_date" json:"publish_date"`
	FetchedAt   time.Time `db:"fetched_at" json:"fetched_at"`
}
