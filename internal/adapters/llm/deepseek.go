package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"

	"github.com/alejandrodnm/forecastbot/internal/domain"
	"github.com/alejandrodnm/forecastbot/internal/trace"
)

const (
	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-reasoner"
	defaultTimeout = 5 * time.Minute
)

// ErrEmptyResponse se devuelve si la API no trae ninguna choice.
var ErrEmptyResponse = errors.New("llm returned no choices")

// Config del cliente OpenAI-compatible.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float32
}

// Client implementa ports.Recommender contra una API compatible con OpenAI.
type Client struct {
	api   *openai.Client
	model string
	temp  float32
	now   func() time.Time
}

// NewClient crea el cliente. Sin BaseURL usa DeepSeek.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:   openai.NewClientWithConfig(oc),
		model: cfg.Model,
		temp:  cfg.Temperature,
		now:   time.Now,
	}
}

// Recommend envía el prompt y devuelve razonamiento + respuesta sin interpretarlos.
func (c *Client) Recommend(ctx context.Context, in domain.RecommendationInput) (rec domain.Recommendation, err error) {
	ctx, span := trace.StartSpan(ctx, "llm.Recommend")
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.String("symbol", in.Symbol),
		attribute.Int("news.count", len(in.News)),
	)
	defer func() { trace.End(span, err) }()

	system, err := SystemPrompt(in)
	if err != nil {
		return domain.Recommendation{}, err
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: UserPrompt},
		},
		Temperature: c.temp,
	}

	slog.Debug("llm request", "model", c.model, "symbol", in.Symbol, "prompt_chars", len(system))
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("llm.Recommend: %s: %w", in.Symbol, err)
	}
	if len(resp.Choices) == 0 {
		return domain.Recommendation{}, fmt.Errorf("llm.Recommend: %s: %w", in.Symbol, ErrEmptyResponse)
	}

	msg := resp.Choices[0].Message
	span.SetAttributes(
		attribute.Int("llm.prompt_tokens", resp.Usage.PromptTokens),
		attribute.Int("llm.completion_tokens", resp.Usage.CompletionTokens),
	)
	slog.Info("llm response",
		"symbol", in.Symbol,
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	model := resp.Model
	if model == "" {
		model = c.model
	}
	return domain.Recommendation{
		Symbol:    in.Symbol,
		Model:     model,
		Reasoning: msg.ReasoningContent,
		Content:   msg.Content,
		CreatedAt: c.now().UTC(),
	}, nil
}
