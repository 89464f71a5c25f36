package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/somya-cb/ai-travel-assistant/app/db"
	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// Repository persists one traveler profile per user.
type Repository interface {
	Upsert(ctx context.Context, profile *types.TravelerProfile) error
	Get(ctx context.Context, userID uuid.UUID) (*types.TravelerProfile, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool database.Querier
}

func NewPostgresRepository(pgpool database.Querier, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresRepository) Upsert(ctx context.Context, profile *types.TravelerProfile) error {
	ctx, span := otel.Tracer("ProfilesRepo").Start(ctx, "Upsert", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "traveler_profiles"),
		attribute.String("db.user.id", profile.UserID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Upsert"), slog.String("userID", profile.UserID.String()))

	payload, err := json.Marshal(profile)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	_, err = r.pgpool.Exec(ctx, `
        INSERT INTO traveler_profiles (user_id, budget_style, profile, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id) DO UPDATE
        SET budget_style = EXCLUDED.budget_style,
            profile = EXCLUDED.profile,
            updated_at = EXCLUDED.updated_at`,
		profile.UserID, string(profile.BudgetStyle), payload, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		l.ErrorContext(ctx, "Failed to upsert traveler profile", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB upsert failed")
		return fmt.Errorf("error saving traveler profile: %w", err)
	}

	l.InfoContext(ctx, "Traveler profile saved")
	span.SetStatus(codes.Ok, "Profile saved")
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID uuid.UUID) (*types.TravelerProfile, error) {
	ctx, span := otel.Tracer("ProfilesRepo").Start(ctx, "Get", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "traveler_profiles"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Get"), slog.String("userID", userID.String()))

	var payload []byte
	err := r.pgpool.QueryRow(ctx, `SELECT profile FROM traveler_profiles WHERE user_id = $1`, userID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, fmt.Errorf("traveler profile for %s: %w", userID, types.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to fetch traveler profile", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("error fetching traveler profile: %w", err)
	}

	var profile types.TravelerProfile
	if err := json.Unmarshal(payload, &profile); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error decoding traveler profile: %w", err)
	}
	span.SetStatus(codes.Ok, "Profile fetched")
	return &profile, nil
}
