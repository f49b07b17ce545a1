package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"hermes/internal/adapters/config"
	"hermes/internal/domain/analysis"
	"hermes/internal/services/ingest"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

const systemPrompt = `You are a financial analyst. Given a news article about a company and its sentiment, respond with a trade recommendation.
Respond with strict JSON only, no prose: {"recommendation": one of "strong_sell", "sell", "hold", "buy", "strong_buy", "rationale": one short sentence}.`

// Recommender produces trade recommendations via OpenAI chat completions
type Recommender struct {
	client  openai.Client // NewClient returns Client (not *Client)
	model   openai.ChatModel
	timeout time.Duration
	log     *logger.Logger
}

// NewRecommender creates an OpenAI-backed recommender
func NewRecommender(cfg config.OpenAIConfig) (*Recommender, error) {
	if cfg.APIKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "openai API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Recommender{
		client:  openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:   openai.ChatModel(model),
		timeout: timeout,
		log:     logger.Get().With("component", "openai_recommender", "model", model),
	}, nil
}

type adviceResponse struct {
	Recommendation string `json:"recommendation"`
	Rationale      string `json:"rationale"`
}

// Recommend asks the model for a recommendation on one article
func (r *Recommender) Recommend(ctx context.Context, title, body string, sentiment ingest.Sentiment) (*ingest.Advice, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf(
		"Title: %s\nSentiment: %s (%.2f)\n\nArticle:\n%s",
		title, sentiment.Label, sentiment.Score, body,
	)

	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrRecommendationFailed, "openai call failed: %v", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.Wrapf(errors.ErrRecommendationFailed, "no choices returned")
	}

	advice, err := parseAdvice(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	r.log.Debugw("Recommendation produced",
		"recommendation", advice.Recommendation,
		"tokens_used", resp.Usage.TotalTokens,
	)
	return advice, nil
}

// parseAdvice decodes the model output, tolerating markdown code fences that
// some models wrap JSON in despite instructions.
func parseAdvice(content string) (*ingest.Advice, error) {
	var parsed adviceResponse
	if err := json.Unmarshal([]byte(stripFences(content)), &parsed); err != nil {
		return nil, errors.Wrapf(errors.ErrRecommendationFailed, "malformed model output: %v", err)
	}

	rec := analysis.Recommendation(strings.ToLower(strings.TrimSpace(parsed.Recommendation)))
	if !rec.Valid() {
		return nil, errors.Wrapf(errors.ErrRecommendationFailed, "unknown recommendation %q", parsed.Recommendation)
	}
	if parsed.Rationale == "" {
		return nil, errors.Wrapf(errors.ErrRecommendationFailed, "missing rationale")
	}

	return &ingest.Advice{Recommendation: rec, Rationale: parsed.Rationale}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var _ ingest.Recommender = (*Recommender)(nil)
