package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

const DefaultModel = "gemini-2.0-flash"

// TextGenerator turns a fully formed prompt into opaque text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var _ TextGenerator = (*AIClient)(nil)

type AIClient struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
	logger *slog.Logger
}

func NewAIClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*AIClient, error) {
	if apiKey == "" {
		return nil, errors.New("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &AIClient{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.7)},
		logger: logger,
	}, nil
}

func (ai *AIClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("AIClient").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("llm.model", ai.model),
		attribute.Int("prompt.length", len(prompt)),
	))
	defer span.End()

	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), ai.config)
	if err != nil {
		ai.logger.ErrorContext(ctx, "Gemini generation failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return "", fmt.Errorf("%w: %v", types.ErrGeneration, err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		span.SetStatus(codes.Error, "empty response")
		return "", fmt.Errorf("%w: empty response", types.ErrGeneration)
	}
	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "generated")
	return text, nil
}
