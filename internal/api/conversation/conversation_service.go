package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/somya-cb/ai-travel-assistant/app/observability/metrics"
	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Recommender ranks destinations for a profile.
type Recommender interface {
	Recommend(ctx context.Context, profile *types.TravelerProfile, req types.RecommendationRequest) (*types.RecommendationResponse, error)
}

// ItineraryWriter turns a ready trip into text. It never fails; generation
// problems come back as a fallback itinerary.
type ItineraryWriter interface {
	Write(ctx context.Context, req types.ItineraryRequest) types.Itinerary
}

type ProfileSource interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.TravelerProfile, error)
}

// CityLookup finds corpus data for a destination the user typed in.
type CityLookup interface {
	FindByCity(ctx context.Context, city string) (*types.Destination, error)
}

// HotelFinder picks a place to stay for the itinerary.
type HotelFinder interface {
	TopHotel(ctx context.Context, city, country string) (*types.Hotel, error)
}

// TurnResponse is what the front end renders after a turn.
type TurnResponse struct {
	ConversationID      string                    `json:"conversation_id"`
	Reply               string                    `json:"reply"`
	Handled             bool                      `json:"handled"`
	Phase               types.Phase               `json:"phase"`
	RecommendationState types.RecommendationState `json:"recommendation_state"`
	ConfirmationStep    types.ConfirmationStep    `json:"confirmation_step"`
	Recommendations     []types.ScoredDestination `json:"recommendations,omitempty"`
	Trip                *types.TripContext        `json:"trip,omitempty"`
	Itinerary           *types.Itinerary          `json:"itinerary,omitempty"`
}

type Service interface {
	HandleTurn(ctx context.Context, userID uuid.UUID, conversationID, utterance string) (*TurnResponse, error)
	GetState(ctx context.Context, userID uuid.UUID, conversationID string) (*types.ConversationState, error)
	Reset(ctx context.Context, userID uuid.UUID, conversationID string) error
}

type ServiceImpl struct {
	logger      *slog.Logger
	engine      *Engine
	store       Store
	profiles    ProfileSource
	recommender Recommender
	itineraries ItineraryWriter
	cities      CityLookup
	hotels      HotelFinder
	now         func() time.Time
}

func NewServiceImpl(
	engine *Engine,
	store Store,
	profiles ProfileSource,
	recommender Recommender,
	itineraries ItineraryWriter,
	cities CityLookup,
	hotels HotelFinder,
	logger *slog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		engine:      engine,
		store:       store,
		profiles:    profiles,
		recommender: recommender,
		itineraries: itineraries,
		cities:      cities,
		hotels:      hotels,
		now:         time.Now,
	}
}

func (s *ServiceImpl) HandleTurn(ctx context.Context, userID uuid.UUID, conversationID, utterance string) (*TurnResponse, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "HandleTurn", trace.WithAttributes(
		attribute.String("conversation.id", conversationID),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "HandleTurn"), slog.String("conversationID", conversationID))

	if strings.TrimSpace(utterance) == "" {
		return nil, fmt.Errorf("%w: utterance is empty", types.ErrBadRequest)
	}

	state, err := s.load(ctx, userID, conversationID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		l.ErrorContext(ctx, "Failed to load conversation state", slog.Any("error", err))
		span.RecordError(err)
		s.recordTurn(ctx, types.PhaseIdle, "error")
		fresh := types.NewConversationState(conversationID, userID)
		return buildResponse(fresh, GenericErrorReply, true, nil, nil), nil
	}

	profile := s.profile(ctx, userID)

	res, itinerary, recs, err := s.runTurn(ctx, *state, profile, utterance)
	outcome := "handled"
	switch {
	case err != nil:
		l.ErrorContext(ctx, "Turn failed, resetting conversation", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "turn failed")
		res = Result{State: state.Reset(), Reply: GenericErrorReply, Handled: true}
		itinerary, recs = nil, nil
		outcome = "error"
	case !res.Handled:
		outcome = "declined"
	}

	res.State.Turns = state.Turns + 1
	res.State.UpdatedAt = s.now().UTC()
	if err := s.store.Put(ctx, res.State); err != nil {
		l.ErrorContext(ctx, "Failed to persist conversation state", slog.Any("error", err))
		span.RecordError(err)
	}

	s.recordTurn(ctx, res.State.Phase, outcome)
	span.SetAttributes(
		attribute.String("conversation.phase", string(res.State.Phase)),
		attribute.String("turn.outcome", outcome),
	)
	if outcome != "error" {
		span.SetStatus(codes.Ok, outcome)
	}

	resp := buildResponse(res.State, res.Reply, res.Handled, recs, itinerary)
	if itinerary != nil && res.Effect.Itinerary != nil {
		// the state is already reset; echo the trip the itinerary was built for
		req := res.Effect.Itinerary
		resp.Trip = &types.TripContext{Destination: req.City, Dates: req.Dates, Overrides: req.Overrides}
		if req.Days > 0 || req.Bucket != types.DurationUnknown {
			resp.Trip.Duration = &types.TripDuration{Days: req.Days, Bucket: req.Bucket}
		}
	}
	return resp, nil
}

// runTurn steps the engine and executes its effect. Panics surface as errors
// so the caller can reset the conversation.
func (s *ServiceImpl) runTurn(ctx context.Context, state types.ConversationState, profile *types.TravelerProfile, utterance string) (res Result, itinerary *types.Itinerary, recs []types.ScoredDestination, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dialogue panic: %v", r)
		}
	}()

	step := s.engine.Step(state, profile, utterance)
	switch step.Effect.Kind {
	case EffectRecommend:
		resp, rerr := s.recommender.Recommend(ctx, step.Effect.Profile, *step.Effect.Recommendation)
		if rerr != nil {
			s.logger.WarnContext(ctx, "Recommendation failed, asking a clarifying question", slog.Any("error", rerr))
		}
		applied := s.engine.ApplyRecommendations(step.State, resp, rerr)
		applied.Effect = step.Effect
		return applied, nil, applied.State.CurrentRecommendations, nil

	case EffectItinerary:
		req := *step.Effect.Itinerary
		s.attachDestination(ctx, &req)
		s.attachHotel(ctx, &req)
		it := s.itineraries.Write(ctx, req)
		done := s.engine.CompleteItinerary(step.State, it)
		done.Effect = Effect{Kind: EffectItinerary, Profile: req.Profile, Itinerary: &req}
		return done, &it, nil, nil
	}
	return step, nil, nil, nil
}

func (s *ServiceImpl) attachDestination(ctx context.Context, req *types.ItineraryRequest) {
	if req.Destination != nil || s.cities == nil || req.City == "" {
		return
	}
	d, err := s.cities.FindByCity(ctx, req.City)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.logger.WarnContext(ctx, "Destination lookup failed", slog.String("city", req.City), slog.Any("error", err))
		}
		return
	}
	req.Destination = d
	req.City = d.City
	req.Country = d.Country
}

func (s *ServiceImpl) attachHotel(ctx context.Context, req *types.ItineraryRequest) {
	if req.Hotel != nil || s.hotels == nil || req.City == "" {
		return
	}
	h, err := s.hotels.TopHotel(ctx, req.City, req.Country)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.logger.WarnContext(ctx, "Hotel lookup failed", slog.String("city", req.City), slog.Any("error", err))
		}
		return
	}
	req.Hotel = h
}

func (s *ServiceImpl) profile(ctx context.Context, userID uuid.UUID) *types.TravelerProfile {
	if s.profiles == nil {
		return nil
	}
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.logger.WarnContext(ctx, "Profile unavailable, continuing without it", slog.Any("error", err))
		}
		return nil
	}
	return p
}

// load returns the stored state or a fresh one. A conversation owned by
// another user is reported as not found.
func (s *ServiceImpl) load(ctx context.Context, userID uuid.UUID, conversationID string) (*types.ConversationState, error) {
	state, err := s.store.Get(ctx, conversationID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			fresh := types.NewConversationState(conversationID, userID)
			return &fresh, nil
		}
		return nil, err
	}
	if state.UserID != userID {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, types.ErrNotFound)
	}
	if !state.Phase.Valid() {
		reset := state.Reset()
		return &reset, nil
	}
	return state, nil
}

func (s *ServiceImpl) GetState(ctx context.Context, userID uuid.UUID, conversationID string) (*types.ConversationState, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "GetState", trace.WithAttributes(
		attribute.String("conversation.id", conversationID),
	))
	defer span.End()

	state, err := s.store.Get(ctx, conversationID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if state.UserID != userID {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, types.ErrNotFound)
	}
	return state, nil
}

func (s *ServiceImpl) Reset(ctx context.Context, userID uuid.UUID, conversationID string) error {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "Reset", trace.WithAttributes(
		attribute.String("conversation.id", conversationID),
	))
	defer span.End()

	if _, err := s.GetState(ctx, userID, conversationID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil
		}
		span.RecordError(err)
		return err
	}
	if err := s.store.Delete(ctx, conversationID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	s.logger.InfoContext(ctx, "Conversation reset", slog.String("conversationID", conversationID))
	return nil
}

func (s *ServiceImpl) recordTurn(ctx context.Context, phase types.Phase, outcome string) {
	metrics.Get().DialogueTurnsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("phase", string(phase)),
		attribute.String("outcome", outcome),
	))
}

func buildResponse(state types.ConversationState, reply string, handled bool, recs []types.ScoredDestination, itinerary *types.Itinerary) *TurnResponse {
	return &TurnResponse{
		ConversationID:      state.ConversationID,
		Reply:               reply,
		Handled:             handled,
		Phase:               state.Phase,
		RecommendationState: state.Phase.RecommendationState(),
		ConfirmationStep:    state.Phase.ConfirmationStep(),
		Recommendations:     recs,
		Trip:                state.Trip,
		Itinerary:           itinerary,
	}
}
