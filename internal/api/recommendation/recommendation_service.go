package recommendation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/somya-cb/ai-travel-assistant/app/observability/metrics"
	"github.com/somya-cb/ai-travel-assistant/internal/api/embedding"
	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

// Corpus is the part of the destination service the ranking pipeline reads from.
type Corpus interface {
	Search(ctx context.Context, queryEmbedding []float32, filters types.SearchFilters, k int) ([]types.SearchHit, error)
	GetMany(ctx context.Context, hits []types.SearchHit) ([]types.Destination, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Recommend ranks destinations for the profile. On a retrieval failure it
	// returns a response with an empty list together with an error wrapping
	// types.ErrRetrieval.
	Recommend(ctx context.Context, profile *types.TravelerProfile, req types.RecommendationRequest) (*types.RecommendationResponse, error)
}

type Options struct {
	Weights       Weights
	TopN          int
	CandidatePool int
	Timeout       time.Duration
}

type ServiceImpl struct {
	logger   *slog.Logger
	corpus   Corpus
	embedder embedding.Embedder
	opts     Options
}

func NewServiceImpl(corpus Corpus, embedder embedding.Embedder, opts Options, logger *slog.Logger) (*ServiceImpl, error) {
	w, err := opts.Weights.Normalize()
	if err != nil {
		return nil, fmt.Errorf("recommendation weights: %w", err)
	}
	opts.Weights = w
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	if opts.CandidatePool < opts.TopN {
		opts.CandidatePool = max(10, opts.TopN)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &ServiceImpl{
		logger:   logger,
		corpus:   corpus,
		embedder: embedder,
		opts:     opts,
	}, nil
}

func (s *ServiceImpl) Recommend(ctx context.Context, profile *types.TravelerProfile, req types.RecommendationRequest) (*types.RecommendationResponse, error) {
	ctx, span := otel.Tracer("RecommendationService").Start(ctx, "Recommend", trace.WithAttributes(
		attribute.String("mode", string(req.Mode)),
		attribute.String("duration", string(req.Duration)),
		attribute.String("month", req.Month),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Recommend"))
	start := time.Now()

	q := Synthesize(profile, req)
	resp := &types.RecommendationResponse{
		Query:           q.TextQuery,
		Mode:            q.Mode,
		Recommendations: []types.ScoredDestination{},
	}
	span.SetAttributes(attribute.String("query", q.TextQuery))
	l.DebugContext(ctx, "Synthesized query", slog.String("query", q.TextQuery), slog.Any("filters", q.Filters))

	fail := func(stage string, err error) (*types.RecommendationResponse, error) {
		metrics.Get().RetrievalErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
		l.ErrorContext(ctx, "Recommendation retrieval failed", slog.String("stage", stage), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, stage+" failed")
		return resp, fmt.Errorf("%w: %s: %v", types.ErrRetrieval, stage, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	vec, err := s.embedder.Embed(callCtx, q.TextQuery)
	if err != nil {
		return fail("embed", err)
	}

	hits, err := s.corpus.Search(callCtx, vec, q.Filters, s.opts.CandidatePool)
	if err != nil {
		return fail("search", err)
	}

	candidates, err := s.corpus.GetMany(callCtx, hits)
	if err != nil {
		return fail("load", err)
	}

	scored := make([]types.ScoredDestination, 0, len(candidates))
	for _, d := range candidates {
		sd := Score(s.opts.Weights, vec, profile, d, req.Duration)
		if t, ok := d.AvgTempFor(req.Month); ok {
			sd.MonthAvgTemp = &t
		}
		scored = append(scored, sd)
	}

	limit := s.opts.TopN
	if req.Limit > 0 && req.Limit < limit {
		limit = req.Limit
	}
	resp.Recommendations = Rank(scored, limit)

	elapsed := time.Since(start).Seconds()
	attrs := metric.WithAttributes(attribute.String("mode", string(q.Mode)))
	metrics.Get().RecommendationsTotal.Add(ctx, 1, attrs)
	metrics.Get().RecommendationDurationSeconds.Record(ctx, elapsed, attrs)

	l.InfoContext(ctx, "Recommendations ranked",
		slog.Int("candidates", len(candidates)),
		slog.Int("returned", len(resp.Recommendations)),
		slog.Float64("elapsed_seconds", elapsed))
	span.SetAttributes(attribute.Int("results.count", len(resp.Recommendations)))
	span.SetStatus(codes.Ok, "ranked")
	return resp, nil
}
