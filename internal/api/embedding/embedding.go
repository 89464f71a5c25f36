package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

// Embedder turns text into a fixed-length vector. Implementations are safe
// for concurrent use and return identical vectors for identical input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// DocumentEmbedder is implemented by embedders that encode corpus documents
// differently from search queries.
type DocumentEmbedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
}

var (
	_ Embedder         = (*GeminiEmbedder)(nil)
	_ DocumentEmbedder = (*GeminiEmbedder)(nil)
	_ Embedder         = (*OpenAIEmbedder)(nil)
)

// Gemini task types
const (
	taskRetrievalQuery    = "RETRIEVAL_QUERY"
	taskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// EmbedDocument embeds text that will be stored in the corpus. Embedders
// without a document mode fall back to Embed.
func EmbedDocument(ctx context.Context, e Embedder, text string) ([]float32, error) {
	if d, ok := e.(DocumentEmbedder); ok {
		return d.EmbedDocument(ctx, text)
	}
	return e.Embed(ctx, text)
}

// GeminiEmbedder calls the Gemini embedContent endpoint.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
	logger    *slog.Logger
}

func NewGeminiEmbedder(ctx context.Context, apiKey, model string, dimension int, logger *slog.Logger) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini embedder: GOOGLE_GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newGeminiEmbedder(client, model, dimension, logger), nil
}

func newGeminiEmbedder(client *genai.Client, model string, dimension int, logger *slog.Logger) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: model, dimension: dimension, logger: logger}
}

func (e *GeminiEmbedder) Dimension() int { return e.dimension }

// Embed encodes a search query.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text, taskRetrievalQuery)
}

// EmbedDocument encodes a corpus document.
func (e *GeminiEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text, taskRetrievalDocument)
}

func (e *GeminiEmbedder) embed(ctx context.Context, text, taskType string) ([]float32, error) {
	ctx, span := otel.Tracer("Embedder").Start(ctx, "GeminiEmbed", trace.WithAttributes(
		attribute.String("embedding.model", e.model),
		attribute.String("embedding.task_type", taskType),
		attribute.Int("text.length", len(text)),
	))
	defer span.End()

	dim := int32(e.dimension)
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		TaskType:             taskType,
		OutputDimensionality: &dim,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "embed content failed")
		e.logger.ErrorContext(ctx, "Gemini embedding failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: gemini embed: %v", types.ErrRetrieval, err)
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		span.SetStatus(codes.Error, "empty embedding response")
		return nil, fmt.Errorf("%w: gemini returned no embeddings", types.ErrRetrieval)
	}

	values := resp.Embeddings[0].Values
	if err := checkDimension(values, e.dimension); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dimension mismatch")
		return nil, err
	}
	span.SetStatus(codes.Ok, "embedded")
	return values, nil
}

// OpenAIEmbedder calls the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dimension int
	logger    *slog.Logger
}

func NewOpenAIEmbedder(client *openai.Client, model string, dimension int, logger *slog.Logger) *OpenAIEmbedder {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIEmbedder{client: client, model: openai.EmbeddingModel(model), dimension: dimension, logger: logger}
}

func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := otel.Tracer("Embedder").Start(ctx, "OpenAIEmbed", trace.WithAttributes(
		attribute.String("embedding.model", string(e.model)),
		attribute.Int("text.length", len(text)),
	))
	defer span.End()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      e.model,
		Dimensions: e.dimension,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create embeddings failed")
		e.logger.ErrorContext(ctx, "OpenAI embedding failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: openai embed: %v", types.ErrRetrieval, err)
	}
	if len(resp.Data) == 0 {
		span.SetStatus(codes.Error, "empty embedding response")
		return nil, fmt.Errorf("%w: openai returned no embeddings", types.ErrRetrieval)
	}

	values := resp.Data[0].Embedding
	if err := checkDimension(values, e.dimension); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dimension mismatch")
		return nil, err
	}
	span.SetStatus(codes.Ok, "embedded")
	return values, nil
}

func checkDimension(values []float32, want int) error {
	if want > 0 && len(values) != want {
		return fmt.Errorf("%w: embedder returned %d dimensions, expected %d", types.ErrDimensionMismatch, len(values), want)
	}
	return nil
}
