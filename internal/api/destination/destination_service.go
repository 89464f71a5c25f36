package destination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/somya-cb/ai-travel-assistant/internal/api/embedding"
	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service exposes the destination corpus to the ranking pipeline.
type Service interface {
	Search(ctx context.Context, queryEmbedding []float32, filters types.SearchFilters, k int) ([]types.SearchHit, error)
	Get(ctx context.Context, id string) (*types.Destination, error)
	FindByCity(ctx context.Context, city string) (*types.Destination, error)
	// GetMany loads the hits concurrently and returns them in hit order.
	// Missing or malformed records are dropped and logged.
	GetMany(ctx context.Context, hits []types.SearchHit) ([]types.Destination, error)
	// Backfill embeds destinations that have no vector yet and reports how many were stored.
	Backfill(ctx context.Context, embedder embedding.Embedder, batchSize int) (int, error)
}

type ServiceImpl struct {
	logger      *slog.Logger
	repo        Repository
	cache       *cache.Cache
	concurrency int
}

func NewServiceImpl(repo Repository, concurrency int, cacheTTL time.Duration, logger *slog.Logger) *ServiceImpl {
	if concurrency <= 0 {
		concurrency = 4
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &ServiceImpl{
		logger:      logger,
		repo:        repo,
		cache:       cache.New(cacheTTL, 2*cacheTTL),
		concurrency: concurrency,
	}
}

func (s *ServiceImpl) Search(ctx context.Context, queryEmbedding []float32, filters types.SearchFilters, k int) ([]types.SearchHit, error) {
	return s.repo.Search(ctx, queryEmbedding, filters, k)
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (*types.Destination, error) {
	if cached, found := s.cache.Get(id); found {
		if d, ok := cached.(*types.Destination); ok {
			return d, nil
		}
	}
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(id, d, cache.DefaultExpiration)
	return d, nil
}

func (s *ServiceImpl) FindByCity(ctx context.Context, city string) (*types.Destination, error) {
	return s.repo.FindByCity(ctx, city)
}

func (s *ServiceImpl) GetMany(ctx context.Context, hits []types.SearchHit) ([]types.Destination, error) {
	ctx, span := otel.Tracer("DestinationService").Start(ctx, "GetMany", trace.WithAttributes(
		attribute.Int("hits.count", len(hits)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetMany"))

	loaded := make([]*types.Destination, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, hit := range hits {
		g.Go(func() error {
			d, err := s.Get(gctx, hit.ID)
			switch {
			case err == nil:
				loaded[i] = d
				return nil
			case errors.Is(err, types.ErrNotFound),
				errors.Is(err, types.ErrMalformedDestination),
				errors.Is(err, types.ErrDimensionMismatch):
				l.WarnContext(gctx, "Skipping destination", slog.String("id", hit.ID), slog.Any("error", err))
				return nil
			default:
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "Failed to load destinations", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}

	out := make([]types.Destination, 0, len(hits))
	for _, d := range loaded {
		if d != nil {
			out = append(out, *d)
		}
	}
	span.SetAttributes(attribute.Int("loaded.count", len(out)))
	span.SetStatus(codes.Ok, "loaded")
	return out, nil
}

func (s *ServiceImpl) Backfill(ctx context.Context, embedder embedding.Embedder, batchSize int) (int, error) {
	ctx, span := otel.Tracer("DestinationService").Start(ctx, "Backfill")
	defer span.End()

	l := s.logger.With(slog.String("method", "Backfill"))
	if batchSize <= 0 {
		batchSize = 50
	}

	stored := 0
	for {
		pending, err := s.repo.ListWithoutEmbeddings(ctx, batchSize)
		if err != nil {
			span.RecordError(err)
			return stored, err
		}
		if len(pending) == 0 {
			break
		}

		progressed := 0
		for _, d := range pending {
			vec, err := embedding.EmbedDocument(ctx, embedder, EmbeddingText(d))
			if err != nil {
				span.RecordError(err)
				return stored, fmt.Errorf("embedding destination %s: %w", d.ID, err)
			}
			if err := s.repo.UpdateEmbedding(ctx, d.ID, vec); err != nil {
				if errors.Is(err, types.ErrNotFound) {
					// embedded concurrently by another run
					continue
				}
				span.RecordError(err)
				return stored, err
			}
			stored++
			progressed++
			l.InfoContext(ctx, "Stored embedding", slog.String("id", d.ID), slog.String("city", d.City))
		}
		if progressed == 0 || len(pending) < batchSize {
			break
		}
	}

	span.SetAttributes(attribute.Int("stored.count", stored))
	span.SetStatus(codes.Ok, "backfill complete")
	return stored, nil
}

// EmbeddingText is the document text embedded for a destination.
func EmbeddingText(d types.Destination) string {
	text := fmt.Sprintf("%s, %s (%s). %s", d.City, d.Country, d.Region, d.ShortDescription)
	if d.IdealDurations != "" {
		text += " Ideal trip length: " + d.IdealDurations + "."
	}
	if d.BudgetLevel != "" {
		text += " Budget level: " + string(d.BudgetLevel) + "."
	}
	return text
}
