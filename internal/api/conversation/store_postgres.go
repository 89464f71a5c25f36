package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/somya-cb/ai-travel-assistant/app/db"
	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	logger *slog.Logger
	pgpool database.Querier
	ttl    time.Duration
}

func NewPostgresStore(pgpool database.Querier, ttl time.Duration, logger *slog.Logger) *PostgresStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &PostgresStore{logger: logger, pgpool: pgpool, ttl: ttl}
}

func (s *PostgresStore) Get(ctx context.Context, conversationID string) (*types.ConversationState, error) {
	ctx, span := otel.Tracer("ConversationStore").Start(ctx, "Get", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "conversation_states"),
		attribute.String("conversation.id", conversationID),
	))
	defer span.End()

	var payload []byte
	err := s.pgpool.QueryRow(ctx, `
        SELECT state FROM conversation_states
        WHERE conversation_id = $1 AND expires_at > NOW()`, conversationID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "not found")
			return nil, fmt.Errorf("conversation %s: %w", conversationID, types.ErrNotFound)
		}
		s.logger.ErrorContext(ctx, "Failed to load conversation state",
			slog.String("conversationID", conversationID), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("error loading conversation state: %w", err)
	}

	var state types.ConversationState
	if err := json.Unmarshal(payload, &state); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error decoding conversation state: %w", err)
	}
	span.SetStatus(codes.Ok, "loaded")
	return &state, nil
}

func (s *PostgresStore) Put(ctx context.Context, state types.ConversationState) error {
	ctx, span := otel.Tracer("ConversationStore").Start(ctx, "Put", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("conversation.id", state.ConversationID),
		attribute.String("conversation.phase", string(state.Phase)),
	))
	defer span.End()

	payload, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("error encoding conversation state: %w", err)
	}

	_, err = s.pgpool.Exec(ctx, `
        INSERT INTO conversation_states (conversation_id, user_id, phase, state, updated_at, expires_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW() + $5::interval)
        ON CONFLICT (conversation_id) DO UPDATE
        SET phase = EXCLUDED.phase,
            state = EXCLUDED.state,
            updated_at = EXCLUDED.updated_at,
            expires_at = EXCLUDED.expires_at`,
		state.ConversationID, state.UserID, string(state.Phase), payload, fmt.Sprintf("%d seconds", int(s.ttl.Seconds())))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save conversation state",
			slog.String("conversationID", state.ConversationID), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB upsert failed")
		return fmt.Errorf("error saving conversation state: %w", err)
	}
	span.SetStatus(codes.Ok, "saved")
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, conversationID string) error {
	ctx, span := otel.Tracer("ConversationStore").Start(ctx, "Delete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("conversation.id", conversationID),
	))
	defer span.End()

	if _, err := s.pgpool.Exec(ctx, `DELETE FROM conversation_states WHERE conversation_id = $1`, conversationID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB delete failed")
		return fmt.Errorf("error deleting conversation state: %w", err)
	}
	span.SetStatus(codes.Ok, "deleted")
	return nil
}
