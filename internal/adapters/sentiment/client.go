package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"hermes/internal/adapters/config"
	"hermes/internal/domain/analysis"
	"hermes/internal/services/ingest"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Client calls an external inference service that classifies text polarity.
// The service contract is POST /analyze with {"text": ...} returning
// {"label": "POSITIVE"|"NEGATIVE"|"NEUTRAL", "score": 0..1}.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a sentiment inference client
func NewClient(cfg config.SentimentConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "sentiment service URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Get().With("component", "sentiment_client"),
	}, nil
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Analyze classifies one text
func (c *Client) Analyze(ctx context.Context, text string) (*ingest.Sentiment, error) {
	if text == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "text cannot be empty")
	}

	payload, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return nil, errors.Wrap(err, "encode sentiment request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "create sentiment request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSentimentFailed, "request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Wrapf(errors.ErrSentimentFailed, "status %d: %s", resp.StatusCode, string(body))
	}

	var parsed analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "decode sentiment response")
	}
	if err := validate(parsed); err != nil {
		return nil, err
	}

	return &ingest.Sentiment{Label: parsed.Label, Score: parsed.Score}, nil
}

func validate(r analyzeResponse) error {
	switch r.Label {
	case analysis.LabelPositive, analysis.LabelNegative, analysis.LabelNeutral:
	default:
		return errors.Wrapf(errors.ErrSentimentFailed, "unknown label %q", r.Label)
	}
	if r.Score < 0 || r.Score > 1 {
		return errors.Wrapf(errors.ErrSentimentFailed, "score %v out of range", r.Score)
	}
	return nil
}

var _ ingest.SentimentAnalyzer = (*Client)(nil)
