package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-walking-tours/app/observability/metrics"
	"github.com/FACorreiaa/go-walking-tours/config"
)

var ErrEmptyResponse = errors.New("generative model returned an empty response")

// ContentGenerator sends one request to a generative model and returns the
// response text.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts []string, config *genai.GenerateContentConfig) (string, error)
}

type AIClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

var _ ContentGenerator = (*AIClient)(nil)

func NewAIClient(ctx context.Context, cfg config.GeminiConfig, logger *slog.Logger) (*AIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &AIClient{
		client: client,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// GenerateContent sends every part as a single user turn.
func (ai *AIClient) GenerateContent(ctx context.Context, parts []string, config *genai.GenerateContentConfig) (string, error) {
	content := &genai.Content{Role: genai.RoleUser}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}

	start := time.Now()
	result, err := ai.client.Models.GenerateContent(ctx, ai.model, []*genai.Content{content}, config)
	m := metrics.Get()
	attrs := otelmetric.WithAttributes(attribute.String("provider", "gemini"))
	m.ExternalCallSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.ExternalCallErrorsTotal.Add(ctx, 1, attrs)
		ai.logger.ErrorContext(ctx, "Gemini request failed", slog.String("model", ai.model), slog.Any("error", err))
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// jsonConfig asks for deterministic JSON matching schema.
func jsonConfig(system string, schema *genai.Schema) *genai.GenerateContentConfig {
	cfg := textConfig(system)
	cfg.ResponseMIMEType = "application/json"
	cfg.ResponseSchema = schema
	return cfg
}

func textConfig(system string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
		TopP:        genai.Ptr[float32](0.95),
		TopK:        genai.Ptr[float32](40),
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	return cfg
}
