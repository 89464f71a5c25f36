package destination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	database "github.com/somya-cb/ai-travel-assistant/app/db"
	"github.com/somya-cb/ai-travel-assistant/app/observability/metrics"
	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the vector-capable document store over the destinations table.
type Repository interface {
	Search(ctx context.Context, queryEmbedding []float32, filters types.SearchFilters, k int) ([]types.SearchHit, error)
	Get(ctx context.Context, id string) (*types.Destination, error)
	FindByCity(ctx context.Context, city string) (*types.Destination, error)
	ListWithoutEmbeddings(ctx context.Context, limit int) ([]types.Destination, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

type RepositoryImpl struct {
	logger    *slog.Logger
	pgpool    database.Querier
	dimension int
}

func NewRepository(pgpool database.Querier, dimension int, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger:    logger,
		pgpool:    pgpool,
		dimension: dimension,
	}
}

const destinationColumns = `
            id, city, country, region, short_description, budget_level, ideal_durations,
            COALESCE(latitude, 0), COALESCE(longitude, 0),
            culture_score, adventure_score, nature_score, beaches_score, nightlife_score,
            cuisine_score, wellness_score, urban_score, seclusion_score,
            avg_temp_monthly, embedding::real[]`

// Search ranks destinations by cosine distance, applying the structured
// filters first. Rows whose stored vector has a different dimension are skipped.
func (r *RepositoryImpl) Search(ctx context.Context, queryEmbedding []float32, filters types.SearchFilters, k int) ([]types.SearchHit, error) {
	ctx, span := otel.Tracer("DestinationRepository").Start(ctx, "Search", trace.WithAttributes(
		attribute.Int("embedding.dimension", len(queryEmbedding)),
		attribute.Int("k", k),
		attribute.String("filter.region", filters.Region),
		attribute.String("filter.country", filters.Country),
		attribute.String("filter.city", filters.City),
		attribute.String("filter.budget_level", string(filters.BudgetLevel)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Search"))

	if r.dimension > 0 && len(queryEmbedding) != r.dimension {
		err := fmt.Errorf("%w: query has %d dimensions, corpus uses %d", types.ErrDimensionMismatch, len(queryEmbedding), r.dimension)
		span.RecordError(err)
		span.SetStatus(codes.Error, "query dimension mismatch")
		return nil, err
	}

	query := `
        SELECT id, 1 - (embedding <=> $1::vector) AS similarity_score
        FROM destinations
        WHERE embedding IS NOT NULL AND vector_dims(embedding) = $2`
	args := []interface{}{pgvector.NewVector(queryEmbedding), len(queryEmbedding)}

	addFilter := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, strings.ToLower(value))
		query += fmt.Sprintf(" AND lower(%s) = $%d", column, len(args))
	}
	addFilter("region", filters.Region)
	addFilter("country", filters.Country)
	addFilter("city", filters.City)
	addFilter("budget_level", string(filters.BudgetLevel))

	args = append(args, k)
	query += fmt.Sprintf(" ORDER BY embedding <=> $1::vector LIMIT $%d", len(args))

	l.DebugContext(ctx, "Executing destination similarity search", slog.Int("k", k), slog.Int("args", len(args)))

	start := time.Now()
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.recordQueryError(ctx, "search")
		l.ErrorContext(ctx, "Failed to query destinations", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("%w: failed to search destinations: %v", types.ErrRetrieval, err)
	}
	defer rows.Close()

	var hits []types.SearchHit
	for rows.Next() {
		var hit types.SearchHit
		if err := rows.Scan(&hit.ID, &hit.Score); err != nil {
			l.ErrorContext(ctx, "Failed to scan search hit", slog.Any("error", err))
			span.RecordError(err)
			return nil, fmt.Errorf("%w: failed to scan search hit: %v", types.ErrRetrieval, err)
		}
		hits = append(hits, hit)
	}
	if err = rows.Err(); err != nil {
		l.ErrorContext(ctx, "Error iterating search hits", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("%w: error iterating search hits: %v", types.ErrRetrieval, err)
	}
	r.recordQueryDuration(ctx, "search", start)

	l.InfoContext(ctx, "Destination search completed", slog.Int("count", len(hits)))
	span.SetAttributes(attribute.Int("results.count", len(hits)))
	span.SetStatus(codes.Ok, "Destinations found")
	return hits, nil
}

// Get loads one destination and validates it against the corpus dimension.
func (r *RepositoryImpl) Get(ctx context.Context, id string) (*types.Destination, error) {
	ctx, span := otel.Tracer("DestinationRepository").Start(ctx, "Get", trace.WithAttributes(
		attribute.String("destination.id", id),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Get"), slog.String("id", id))

	start := time.Now()
	row := r.pgpool.QueryRow(ctx, `SELECT `+destinationColumns+` FROM destinations WHERE id = $1`, id)
	d, err := scanDestination(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, fmt.Errorf("destination %s: %w", id, types.ErrNotFound)
		}
		r.recordQueryError(ctx, "get")
		l.ErrorContext(ctx, "Failed to load destination", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("%w: failed to load destination %s: %v", types.ErrRetrieval, id, err)
	}
	r.recordQueryDuration(ctx, "get", start)

	if err := d.Validate(r.dimension); err != nil {
		l.WarnContext(ctx, "Rejected malformed destination", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed destination")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Destination loaded")
	return d, nil
}

// FindByCity returns the first destination whose city matches case-insensitively.
func (r *RepositoryImpl) FindByCity(ctx context.Context, city string) (*types.Destination, error) {
	ctx, span := otel.Tracer("DestinationRepository").Start(ctx, "FindByCity", trace.WithAttributes(
		attribute.String("destination.city", city),
	))
	defer span.End()

	row := r.pgpool.QueryRow(ctx,
		`SELECT `+destinationColumns+` FROM destinations WHERE lower(city) = lower($1) ORDER BY id LIMIT 1`, city)
	d, err := scanDestination(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, fmt.Errorf("destination in %s: %w", city, types.ErrNotFound)
		}
		r.recordQueryError(ctx, "find_by_city")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("%w: failed to find destination %s: %v", types.ErrRetrieval, city, err)
	}
	if err := d.Validate(r.dimension); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "Destination found")
	return d, nil
}

// ListWithoutEmbeddings returns destinations that still need an embedding.
func (r *RepositoryImpl) ListWithoutEmbeddings(ctx context.Context, limit int) ([]types.Destination, error) {
	ctx, span := otel.Tracer("DestinationRepository").Start(ctx, "ListWithoutEmbeddings", trace.WithAttributes(
		attribute.Int("limit", limit),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx,
		`SELECT `+destinationColumns+` FROM destinations WHERE embedding IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		r.recordQueryError(ctx, "list_without_embeddings")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to list destinations without embeddings: %w", err)
	}
	defer rows.Close()

	var out []types.Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan destination row: %w", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating destination rows: %w", err)
	}
	span.SetStatus(codes.Ok, "listed")
	return out, nil
}

// UpdateEmbedding writes the vector for a destination that has none yet.
// Stored embeddings are immutable, so an existing vector is left untouched.
func (r *RepositoryImpl) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	ctx, span := otel.Tracer("DestinationRepository").Start(ctx, "UpdateEmbedding", trace.WithAttributes(
		attribute.String("destination.id", id),
		attribute.Int("embedding.dimension", len(embedding)),
	))
	defer span.End()

	if r.dimension > 0 && len(embedding) != r.dimension {
		err := fmt.Errorf("%w: destination %s embedding has %d dimensions, corpus uses %d",
			types.ErrDimensionMismatch, id, len(embedding), r.dimension)
		span.RecordError(err)
		span.SetStatus(codes.Error, "dimension mismatch")
		return err
	}

	tag, err := r.pgpool.Exec(ctx, `
        UPDATE destinations
        SET embedding = $1::vector, embedding_generated_at = NOW()
        WHERE id = $2 AND embedding IS NULL`, pgvector.NewVector(embedding), id)
	if err != nil {
		r.recordQueryError(ctx, "update_embedding")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database update failed")
		return fmt.Errorf("failed to update embedding for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "no row updated")
		return fmt.Errorf("destination %s without embedding: %w", id, types.ErrNotFound)
	}
	span.SetStatus(codes.Ok, "embedding stored")
	return nil
}

func scanDestination(row pgx.Row) (*types.Destination, error) {
	var d types.Destination
	var budget string
	var temps []byte
	err := row.Scan(
		&d.ID, &d.City, &d.Country, &d.Region, &d.ShortDescription, &budget, &d.IdealDurations,
		&d.Latitude, &d.Longitude,
		&d.Scores.Culture, &d.Scores.Adventure, &d.Scores.Nature, &d.Scores.Beaches, &d.Scores.Nightlife,
		&d.Scores.Cuisine, &d.Scores.Wellness, &d.Scores.Urban, &d.Scores.Seclusion,
		&temps, &d.Embedding,
	)
	if err != nil {
		return nil, err
	}
	d.BudgetLevel = types.BudgetLevel(budget)
	if len(temps) > 0 {
		if err := json.Unmarshal(temps, &d.AvgTempMonthly); err != nil {
			return nil, fmt.Errorf("%w: destination %s avg_temp_monthly: %v", types.ErrMalformedDestination, d.ID, err)
		}
	}
	return &d, nil
}

func (r *RepositoryImpl) recordQueryDuration(ctx context.Context, op string, start time.Time) {
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("op", op), attribute.String("table", "destinations")))
}

func (r *RepositoryImpl) recordQueryError(ctx context.Context, op string) {
	metrics.Get().DbQueryErrorsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("op", op), attribute.String("table", "destinations")))
}
