package profiles

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// CreateProfile validates params and stores them as the user's profile,
	// replacing any previous one. The original creation time is kept.
	CreateProfile(ctx context.Context, userID uuid.UUID, params types.CreateTravelerProfileParams) (*types.TravelerProfile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.TravelerProfile, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	now    func() time.Time
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		now:    time.Now,
	}
}

func (s *ServiceImpl) CreateProfile(ctx context.Context, userID uuid.UUID, params types.CreateTravelerProfileParams) (*types.TravelerProfile, error) {
	ctx, span := otel.Tracer("ProfilesService").Start(ctx, "CreateProfile", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateProfile"), slog.String("userID", userID.String()))

	now := s.now().UTC()
	profile, err := types.NewTravelerProfile(userID, params, now)
	if err != nil {
		l.WarnContext(ctx, "Rejected traveler profile", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid profile")
		return nil, err
	}

	if existing, err := s.repo.Get(ctx, userID); err == nil {
		profile.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Upsert(ctx, profile); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return nil, err
	}

	l.InfoContext(ctx, "Traveler profile stored", slog.String("summary", profile.Summary()))
	span.SetStatus(codes.Ok, "profile stored")
	return profile, nil
}

func (s *ServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*types.TravelerProfile, error) {
	ctx, span := otel.Tracer("ProfilesService").Start(ctx, "GetProfile", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	profile, err := s.repo.Get(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "profile fetched")
	return profile, nil
}
