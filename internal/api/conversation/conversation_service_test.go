package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/somya-cb/ai-travel-assistant/app/middleware"
	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

// memoryStore is a map-backed Store for service tests.
type memoryStore struct {
	mu     sync.Mutex
	states map[string]types.ConversationState
	putErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: map[string]types.ConversationState{}}
}

func (m *memoryStore) Get(_ context.Context, id string) (*types.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, types.ErrNotFound)
	}
	c := s.Clone()
	return &c, nil
}

func (m *memoryStore) Put(_ context.Context, s types.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.states[s.ConversationID] = s.Clone()
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	return nil
}

type MockRecommender struct {
	mock.Mock
}

func (m *MockRecommender) Recommend(ctx context.Context, profile *types.TravelerProfile, req types.RecommendationRequest) (*types.RecommendationResponse, error) {
	args := m.Called(ctx, profile, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecommendationResponse), args.Error(1)
}

type MockItineraryWriter struct {
	mock.Mock
}

func (m *MockItineraryWriter) Write(ctx context.Context, req types.ItineraryRequest) types.Itinerary {
	args := m.Called(ctx, req)
	return args.Get(0).(types.Itinerary)
}

type MockProfileSource struct {
	mock.Mock
}

func (m *MockProfileSource) GetProfile(ctx context.Context, userID uuid.UUID) (*types.TravelerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TravelerProfile), args.Error(1)
}

type MockCityLookup struct {
	mock.Mock
}

func (m *MockCityLookup) FindByCity(ctx context.Context, city string) (*types.Destination, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Destination), args.Error(1)
}

// stubHotels returns hotel for every city it is asked about, or ErrNotFound when unset.
type stubHotels struct {
	hotel *types.Hotel
	err   error
	asked []string
}

func (h *stubHotels) TopHotel(_ context.Context, city, country string) (*types.Hotel, error) {
	h.asked = append(h.asked, city+"|"+country)
	if h.err != nil {
		return nil, h.err
	}
	if h.hotel == nil {
		return nil, fmt.Errorf("hotel in %s: %w", city, types.ErrNotFound)
	}
	return h.hotel, nil
}

// panickingRecommender simulates an unexpected internal fault.
type panickingRecommender struct{}

func (panickingRecommender) Recommend(context.Context, *types.TravelerProfile, types.RecommendationRequest) (*types.RecommendationResponse, error) {
	panic("index out of range")
}

var testUser = uuid.MustParse("22222222-2222-2222-2222-222222222222")

type fixture struct {
	store       *memoryStore
	profiles    *MockProfileSource
	recommender *MockRecommender
	writer      *MockItineraryWriter
	cities      *MockCityLookup
	hotels      *stubHotels
	svc         *ServiceImpl
}

func newFixture(t *testing.T, profile *types.TravelerProfile) *fixture {
	t.Helper()
	f := &fixture{
		store:       newMemoryStore(),
		profiles:    new(MockProfileSource),
		recommender: new(MockRecommender),
		writer:      new(MockItineraryWriter),
		cities:      new(MockCityLookup),
		hotels:      &stubHotels{},
	}
	if profile != nil {
		f.profiles.On("GetProfile", mock.Anything, testUser).Return(profile, nil)
	} else {
		f.profiles.On("GetProfile", mock.Anything, testUser).Return(nil, types.ErrNotFound)
	}
	f.svc = NewServiceImpl(NewEngine(7, 5), f.store, f.profiles, f.recommender, f.writer, f.cities, f.hotels,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func TestHandleTurnEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, foodieProfile())
	f.recommender.On("Recommend", mock.Anything, mock.Anything, mock.MatchedBy(func(req types.RecommendationRequest) bool {
		return req.Month == "may" && req.Duration == types.DurationLong
	})).Return(ranked("Lisbon", "Bangkok"), nil).Once()

	resp, err := f.svc.HandleTurn(ctx, testUser, "c1", "recommend me places in May")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseWaitingDuration, resp.Phase)
	assert.Equal(t, types.RecommendationWaitingDuration, resp.RecommendationState)

	resp, err = f.svc.HandleTurn(ctx, testUser, "c1", "a week")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseWaitingPreferences, resp.Phase)

	resp, err = f.svc.HandleTurn(ctx, testUser, "c1", "same as usual")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseShowingRecommendations, resp.Phase)
	require.Len(t, resp.Recommendations, 2)
	assert.Contains(t, resp.Reply, "1. Lisbon")

	stored, err := f.store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Turns)
	assert.Len(t, stored.CurrentRecommendations, 2)

	f.writer.On("Write", mock.Anything, mock.MatchedBy(func(req types.ItineraryRequest) bool {
		return req.City == "Lisbon" && req.Days == 7 && req.Destination != nil
	})).Return(types.Itinerary{City: "Lisbon", Text: "Day 1: Belém"}).Once()

	resp, err = f.svc.HandleTurn(ctx, testUser, "c1", "the first one")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseIdle, resp.Phase)
	require.NotNil(t, resp.Itinerary)
	assert.Equal(t, "Day 1: Belém", resp.Reply)
	require.NotNil(t, resp.Trip)
	assert.Equal(t, "Lisbon", resp.Trip.Destination)

	f.recommender.AssertExpectations(t)
	f.writer.AssertExpectations(t)
	f.cities.AssertNotCalled(t, "FindByCity", mock.Anything, mock.Anything)
}

func TestHandleTurnTripFlowLooksUpCorpus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	porto := &types.Destination{ID: "porto", City: "Porto", Country: "Portugal"}
	f.cities.On("FindByCity", mock.Anything, "Porto").Return(porto, nil)
	f.writer.On("Write", mock.Anything, mock.MatchedBy(func(req types.ItineraryRequest) bool {
		return req.Destination == porto && req.Country == "Portugal" && req.Days == 3
	})).Return(types.Itinerary{City: "Porto", Text: "Day 1: Ribeira"})

	resp, err := f.svc.HandleTurn(ctx, testUser, "c2", "trip to Porto for 3 days in October")
	require.NoError(t, err)
	assert.Equal(t, "Day 1: Ribeira", resp.Reply)
	assert.Equal(t, types.PhaseIdle, resp.Phase)
	f.writer.AssertExpectations(t)
}

func TestHandleTurnItineraryIncludesHotel(t *testing.T) {
	ctx := context.Background()

	t.Run("top hotel reaches the itinerary request", func(t *testing.T) {
		f := newFixture(t, nil)
		porto := &types.Destination{ID: "porto", City: "Porto", Country: "Portugal"}
		f.cities.On("FindByCity", mock.Anything, "Porto").Return(porto, nil)
		f.hotels.hotel = &types.Hotel{Name: "Casa do Rio", Address: "Cais da Ribeira 5"}
		f.writer.On("Write", mock.Anything, mock.MatchedBy(func(req types.ItineraryRequest) bool {
			return req.Hotel != nil && req.Hotel.Name == "Casa do Rio"
		})).Return(types.Itinerary{City: "Porto", Text: "Day 1: Ribeira"})

		_, err := f.svc.HandleTurn(ctx, testUser, "h1", "trip to Porto for 3 days in October")
		require.NoError(t, err)
		assert.Equal(t, []string{"Porto|Portugal"}, f.hotels.asked)
		f.writer.AssertExpectations(t)
	})

	t.Run("hotel lookup failure still writes the itinerary", func(t *testing.T) {
		f := newFixture(t, nil)
		f.cities.On("FindByCity", mock.Anything, "Porto").Return(nil, types.ErrNotFound)
		f.hotels.err = fmt.Errorf("%w: connection reset", types.ErrRetrieval)
		f.writer.On("Write", mock.Anything, mock.MatchedBy(func(req types.ItineraryRequest) bool {
			return req.Hotel == nil && req.City == "Porto"
		})).Return(types.Itinerary{City: "Porto", Text: "Day 1: Ribeira"})

		resp, err := f.svc.HandleTurn(ctx, testUser, "h2", "trip to Porto for 3 days in October")
		require.NoError(t, err)
		assert.Equal(t, "Day 1: Ribeira", resp.Reply)
		assert.Equal(t, []string{"Porto|"}, f.hotels.asked)
	})
}

func TestHandleTurnDeclinesChitChat(t *testing.T) {
	f := newFixture(t, foodieProfile())
	resp, err := f.svc.HandleTurn(context.Background(), testUser, "c3", "tell me a joke")
	require.NoError(t, err)
	assert.False(t, resp.Handled)
	assert.Equal(t, types.PhaseIdle, resp.Phase)
}

func TestHandleTurnRetrievalFailureAsksAgain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, foodieProfile())
	state := newState(types.PhaseWaitingPreferences)
	state.ConversationID, state.UserID = "c4", testUser
	require.NoError(t, f.store.Put(ctx, state))

	f.recommender.On("Recommend", mock.Anything, mock.Anything, mock.Anything).
		Return(&types.RecommendationResponse{}, fmt.Errorf("%w: store down", types.ErrRetrieval))

	resp, err := f.svc.HandleTurn(ctx, testUser, "c4", "same as usual")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseWaitingPreferences, resp.Phase)
	assert.Equal(t, noResultsReply, resp.Reply)
	assert.Empty(t, resp.Recommendations)
}

func TestHandleTurnRecoversFromPanic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, foodieProfile())
	f.svc.recommender = panickingRecommender{}

	state := newState(types.PhaseWaitingPreferences)
	state.ConversationID, state.UserID = "c5", testUser
	state.DetectedMonth = "may"
	require.NoError(t, f.store.Put(ctx, state))

	resp, err := f.svc.HandleTurn(ctx, testUser, "c5", "same as usual")
	require.NoError(t, err)
	assert.Equal(t, GenericErrorReply, resp.Reply)
	assert.Equal(t, types.PhaseIdle, resp.Phase)

	stored, err := f.store.Get(ctx, "c5")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseIdle, stored.Phase)
	assert.Empty(t, stored.DetectedMonth)
}

func TestHandleTurnOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, foodieProfile())
	other := types.NewConversationState("c6", uuid.New())
	require.NoError(t, f.store.Put(ctx, other))

	_, err := f.svc.HandleTurn(ctx, testUser, "c6", "recommend me somewhere")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = f.svc.GetState(ctx, testUser, "c6")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestHandleTurnRejectsEmptyUtterance(t *testing.T) {
	f := newFixture(t, foodieProfile())
	_, err := f.svc.HandleTurn(context.Background(), testUser, "c7", "   ")
	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestHandleTurnSurvivesPersistenceFailure(t *testing.T) {
	f := newFixture(t, foodieProfile())
	f.store.putErr = errors.New("connection refused")

	resp, err := f.svc.HandleTurn(context.Background(), testUser, "c8", "recommend me somewhere")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseWaitingDuration, resp.Phase)
}

func TestResetConversation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, foodieProfile())
	_, err := f.svc.HandleTurn(ctx, testUser, "c9", "recommend me somewhere")
	require.NoError(t, err)

	require.NoError(t, f.svc.Reset(ctx, testUser, "c9"))
	_, err = f.svc.GetState(ctx, testUser, "c9")
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.NoError(t, f.svc.Reset(ctx, testUser, "never-existed"))
}

func TestHandlerPostTurn(t *testing.T) {
	f := newFixture(t, foodieProfile())
	h := NewHandlerImpl(f.svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Post("/conversations/{conversationID}/turns", h.PostTurn)
	r.Get("/conversations/{conversationID}", h.GetConversation)

	body, _ := json.Marshal(TurnRequest{Message: "recommend me somewhere"})
	req := httptest.NewRequest(http.MethodPost, "/conversations/c10/turns", bytes.NewReader(body))
	req = req.WithContext(appMiddleware.WithUserID(req.Context(), testUser))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, types.PhaseWaitingDuration, resp.Phase)
	assert.True(t, resp.Handled)

	req = httptest.NewRequest(http.MethodGet, "/conversations/c10", nil)
	req = req.WithContext(appMiddleware.WithUserID(req.Context(), testUser))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phase":"waiting_duration"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/conversations/c10/turns", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
