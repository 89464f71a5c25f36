package destination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Search(ctx context.Context, queryEmbedding []float32, filters types.SearchFilters, k int) ([]types.SearchHit, error) {
	args := m.Called(ctx, queryEmbedding, filters, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.SearchHit), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id string) (*types.Destination, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Destination), args.Error(1)
}

func (m *MockRepository) FindByCity(ctx context.Context, city string) (*types.Destination, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Destination), args.Error(1)
}

func (m *MockRepository) ListWithoutEmbeddings(ctx context.Context, limit int) ([]types.Destination, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Destination), args.Error(1)
}

func (m *MockRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	args := m.Called(ctx, id, embedding)
	return args.Error(0)
}

type stubEmbedder struct {
	calls    int
	docCalls int
	err      error
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 0, 1}, nil
}

func (e *stubEmbedder) EmbedDocument(_ context.Context, text string) ([]float32, error) {
	e.docCalls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (e *stubEmbedder) Dimension() int { return 3 }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func dest(id, city string) *types.Destination {
	return &types.Destination{ID: id, City: city, Country: "Somewhere", BudgetLevel: types.BudgetLevelBudget}
}

func TestServiceGetIsCached(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("Get", mock.Anything, "kyoto").Return(dest("kyoto", "Kyoto"), nil).Once()

	svc := NewServiceImpl(repo, 2, time.Minute, testLogger())
	d1, err := svc.Get(ctx, "kyoto")
	require.NoError(t, err)
	d2, err := svc.Get(ctx, "kyoto")
	require.NoError(t, err)

	assert.Same(t, d1, d2)
	repo.AssertExpectations(t)
}

func TestServiceGetMany(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps hit order and drops unusable records", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Get", mock.Anything, "a").Return(dest("a", "Athens"), nil)
		repo.On("Get", mock.Anything, "b").Return(nil, fmt.Errorf("x: %w", types.ErrNotFound))
		repo.On("Get", mock.Anything, "c").Return(nil, fmt.Errorf("x: %w", types.ErrMalformedDestination))
		repo.On("Get", mock.Anything, "d").Return(dest("d", "Dubrovnik"), nil)

		svc := NewServiceImpl(repo, 2, time.Minute, testLogger())
		out, err := svc.GetMany(ctx, []types.SearchHit{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}})
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "a", out[0].ID)
		assert.Equal(t, "d", out[1].ID)
	})

	t.Run("store failure aborts", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Get", mock.Anything, "a").Return(nil, fmt.Errorf("%w: timeout", types.ErrRetrieval))

		svc := NewServiceImpl(repo, 2, time.Minute, testLogger())
		_, err := svc.GetMany(ctx, []types.SearchHit{{ID: "a"}})
		assert.ErrorIs(t, err, types.ErrRetrieval)
	})
}

func TestServiceBackfill(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds every pending destination", func(t *testing.T) {
		repo := new(MockRepository)
		pending := []types.Destination{*dest("a", "Athens"), *dest("b", "Bergen")}
		repo.On("ListWithoutEmbeddings", mock.Anything, 10).Return(pending, nil).Once()
		repo.On("UpdateEmbedding", mock.Anything, "a", mock.Anything).Return(nil).Once()
		repo.On("UpdateEmbedding", mock.Anything, "b", mock.Anything).Return(nil).Once()

		emb := &stubEmbedder{}
		svc := NewServiceImpl(repo, 2, time.Minute, testLogger())
		n, err := svc.Backfill(ctx, emb, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, 2, emb.docCalls, "corpus text is embedded as documents")
		assert.Zero(t, emb.calls)
		repo.AssertExpectations(t)
	})

	t.Run("embedder failure stops the run", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListWithoutEmbeddings", mock.Anything, 10).Return([]types.Destination{*dest("a", "Athens")}, nil).Once()

		svc := NewServiceImpl(repo, 2, time.Minute, testLogger())
		n, err := svc.Backfill(ctx, &stubEmbedder{err: errors.New("quota")}, 10)
		assert.Error(t, err)
		assert.Zero(t, n)
	})
}

func TestEmbeddingText(t *testing.T) {
	text := EmbeddingText(types.Destination{
		City: "Lisbon", Country: "Portugal", Region: "Europe",
		ShortDescription: "Hilly coastal capital.", IdealDurations: "Weekend", BudgetLevel: types.BudgetLevelMidRange,
	})
	assert.Contains(t, text, "Lisbon, Portugal (Europe)")
	assert.Contains(t, text, "Ideal trip length: Weekend.")
	assert.Contains(t, text, "Budget level: Mid-Range.")
}

func TestHandlerGetDestination(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Get", mock.Anything, "kyoto").Return(dest("kyoto", "Kyoto"), nil)
	repo.On("Get", mock.Anything, "nowhere").Return(nil, fmt.Errorf("x: %w", types.ErrNotFound))

	h := NewHandlerImpl(NewServiceImpl(repo, 2, time.Minute, testLogger()), testLogger())
	r := chi.NewRouter()
	r.Get("/destinations/{id}", h.GetDestination)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/destinations/kyoto", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"city":"Kyoto"`)
	assert.NotContains(t, rec.Body.String(), "embedding")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/destinations/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
