package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

var _ Store = (*RedisStore)(nil)

const redisKeyPrefix = "conversation:"

// RedisStore keeps each conversation as one JSON value with a sliding TTL.
type RedisStore struct {
	logger *slog.Logger
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{logger: logger, client: client, ttl: ttl}
}

func redisKey(conversationID string) string {
	return redisKeyPrefix + conversationID
}

func (s *RedisStore) Get(ctx context.Context, conversationID string) (*types.ConversationState, error) {
	ctx, span := otel.Tracer("ConversationStore").Start(ctx, "RedisGet", trace.WithAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("conversation.id", conversationID),
	))
	defer span.End()

	payload, err := s.client.Get(ctx, redisKey(conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, types.ErrNotFound)
		}
		s.logger.ErrorContext(ctx, "Failed to load conversation state from redis", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "redis get failed")
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

func (s *RedisStore) Put(ctx context.Context, state types.ConversationState) error {
	ctx, span := otel.Tracer("ConversationStore").Start(ctx, "RedisPut", trace.WithAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("conversation.id", state.ConversationID),
	))
	defer span.End()

	payload, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("error encoding conversation state: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(state.ConversationID), payload, s.ttl).Err(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save conversation state to redis", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "redis set failed")
		return fmt.Errorf("error saving conversation state: %w", err)
	}
	span.SetStatus(codes.Ok, "saved")
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, redisKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("error deleting conversation state: %w", err)
	}
	return nil
}
