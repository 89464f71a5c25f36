package hotel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
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

// Repository reads the hotels table.
type Repository interface {
	SearchByLocation(ctx context.Context, city, country string, limit int) ([]types.Hotel, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.Querier
}

func NewRepository(pgpool database.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

// SearchByLocation returns hotels in a city, best rated first. An empty
// country matches any country.
func (r *RepositoryImpl) SearchByLocation(ctx context.Context, city, country string, limit int) ([]types.Hotel, error) {
	ctx, span := otel.Tracer("HotelRepository").Start(ctx, "SearchByLocation", trace.WithAttributes(
		attribute.String("hotel.city", city),
		attribute.String("hotel.country", country),
		attribute.Int("limit", limit),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "SearchByLocation"))

	query := `
        SELECT id, name, address, city, country, COALESCE(stars, 0), description, facilities,
               phone, website, COALESCE(latitude, 0), COALESCE(longitude, 0)
        FROM hotels
        WHERE lower(city) = lower($1) AND ($2 = '' OR lower(country) = lower($2))
        ORDER BY stars DESC NULLS LAST, name
        LIMIT $3`

	start := time.Now()
	rows, err := r.pgpool.Query(ctx, query, strings.TrimSpace(city), strings.TrimSpace(country), limit)
	if err != nil {
		r.recordQueryError(ctx, "search_by_location")
		l.ErrorContext(ctx, "Failed to query hotels", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("%w: failed to query hotels: %v", types.ErrRetrieval, err)
	}

	hotels, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Hotel, error) {
		var h types.Hotel
		err := row.Scan(&h.ID, &h.Name, &h.Address, &h.City, &h.Country, &h.Stars, &h.Description,
			&h.Facilities, &h.Phone, &h.Website, &h.Latitude, &h.Longitude)
		return h, err
	})
	if err != nil {
		r.recordQueryError(ctx, "search_by_location")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to scan hotels")
		return nil, fmt.Errorf("%w: failed to scan hotels: %v", types.ErrRetrieval, err)
	}
	r.recordQueryDuration(ctx, "search_by_location", start)

	for i := range hotels {
		hotels[i].Tidy()
	}

	l.DebugContext(ctx, "Hotel search completed", slog.String("city", city), slog.Int("count", len(hotels)))
	span.SetAttributes(attribute.Int("results.count", len(hotels)))
	span.SetStatus(codes.Ok, "Hotels found")
	return hotels, nil
}

func (r *RepositoryImpl) recordQueryDuration(ctx context.Context, op string, start time.Time) {
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("op", op), attribute.String("table", "hotels")))
}

func (r *RepositoryImpl) recordQueryError(ctx context.Context, op string) {
	metrics.Get().DbQueryErrorsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("op", op), attribute.String("table", "hotels")))
}
