package guardian

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"hermes/internal/adapters/config"
	"hermes/internal/services/ingest"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Client fetches articles from the Guardian content search API
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a Guardian API client
func NewClient(cfg config.GuardianConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "guardian API key is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		pageSize:   cfg.PageSize,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Get().With("component", "guardian_client"),
	}, nil
}

type searchResponse struct {
	Response struct {
		Status  string         `json:"status"`
		Total   int            `json:"total"`
		Results []searchResult `json:"results"`
	} `json:"response"`
}

type searchResult struct {
	WebURL             string `json:"webUrl"`
	WebTitle           string `json:"webTitle"`
	WebPublicationDate string `json:"webPublicationDate"`
	Fields             struct {
		BodyText string `json:"bodyText"`
	} `json:"fields"`
}

// FetchArticles searches for recent articles on a topic, newest first
func (c *Client) FetchArticles(ctx context.Context, topic string, limit int) ([]ingest.FetchedArticle, error) {
	if limit <= 0 || limit > c.pageSize {
		limit = c.pageSize
	}

	q := url.Values{}
	q.Set("q", topic)
	q.Set("api-key", c.apiKey)
	q.Set("show-fields", "bodyText")
	q.Set("order-by", "newest")
	q.Set("page-size", strconv.Itoa(limit))

	endpoint := c.baseURL + "/search?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create guardian request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "guardian request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("guardian returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "decode guardian response")
	}
	if parsed.Response.Status != "ok" {
		return nil, fmt.Errorf("guardian status %q", parsed.Response.Status)
	}

	articles := make([]ingest.FetchedArticle, 0, len(parsed.Response.Results))
	for _, r := range parsed.Response.Results {
		pub, err := time.Parse(time.RFC3339, r.WebPublicationDate)
		if err != nil {
			c.log.Warnw("Skipping article with unparseable date", "url", r.WebURL, "date", r.WebPublicationDate)
			continue
		}
		articles = append(articles, ingest.FetchedArticle{
			URL:         r.WebURL,
			Title:       r.WebTitle,
			BodyText:    r.Fields.BodyText,
			PublishDate: pub.UTC().Truncate(24 * time.Hour),
		})
	}

	c.log.Debugw("Guardian search complete", "topic", topic, "total", parsed.Response.Total, "returned", len(articles))
	return articles, nil
}

var _ ingest.NewsSource = (*Client)(nil)
