package hotel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

var hotelRowColumns = []string{
	"id", "name", "address", "city", "country", "stars", "description", "facilities",
	"phone", "website", "latitude", "longitude",
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SearchByLocation(ctx context.Context, city, country string, limit int) ([]types.Hotel, error) {
	args := m.Called(ctx, city, country, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Hotel), args.Error(1)
}

type MockDestinations struct {
	mock.Mock
}

func (m *MockDestinations) Get(ctx context.Context, id string) (*types.Destination, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Destination), args.Error(1)
}

func TestRepositorySearchByLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by city and country and tidies rows", func(t *testing.T) {
		pool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer pool.Close()
		repo := NewRepository(pool, testLogger())

		pool.ExpectQuery(`FROM hotels\s+WHERE lower\(city\) = lower\(\$1\) AND \(\$2 = '' OR lower\(country\) = lower\(\$2\)\)\s+ORDER BY stars DESC NULLS LAST, name\s+LIMIT \$3`).
			WithArgs("Lisbon", "Portugal", 5).
			WillReturnRows(pgxmock.NewRows(hotelRowColumns).
				AddRow("h1", "Casa Azul", "Rua Augusta 1", "Lisbon", "Portugal", 4, "<p>Rooftop pool</p>",
					[]string{"wifi", "pool"}, "+351 1", "https://casa.example", 38.71, -9.13).
				AddRow("h2", "", "", "Lisbon", "Portugal", 0, "", []string{}, "", "", 0.0, 0.0))

		hotels, err := repo.SearchByLocation(ctx, " Lisbon ", "Portugal", 5)
		require.NoError(t, err)
		require.Len(t, hotels, 2)
		assert.Equal(t, "4 Star", hotels[0].Rating)
		assert.Equal(t, "Rooftop pool", hotels[0].Description)
		assert.Equal(t, "Unknown Hotel", hotels[1].Name)
		assert.Equal(t, "Address not available", hotels[1].Address)
		assert.Equal(t, "Not Rated", hotels[1].Rating)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("query failure is a retrieval error", func(t *testing.T) {
		pool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer pool.Close()
		repo := NewRepository(pool, testLogger())

		pool.ExpectQuery(`FROM hotels`).
			WithArgs("Lisbon", "", 10).
			WillReturnError(errors.New("connection reset"))

		_, err = repo.SearchByLocation(ctx, "Lisbon", "", 10)
		assert.ErrorIs(t, err, types.ErrRetrieval)
	})
}

func TestServiceSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("results are cached per city, country and limit", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("SearchByLocation", mock.Anything, "Kyoto", "Japan", 3).
			Return([]types.Hotel{{ID: "k1", Name: "Ryokan"}}, nil).Once()

		svc := NewServiceImpl(repo, new(MockDestinations), time.Minute, testLogger())
		first, err := svc.Search(ctx, "Kyoto", "Japan", 3)
		require.NoError(t, err)
		second, err := svc.Search(ctx, "kyoto", "JAPAN", 3)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		repo.AssertExpectations(t)
	})

	t.Run("limit is capped at ten", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("SearchByLocation", mock.Anything, "Kyoto", "", DefaultLimit).Return([]types.Hotel{}, nil).Once()

		svc := NewServiceImpl(repo, new(MockDestinations), time.Minute, testLogger())
		_, err := svc.Search(ctx, "Kyoto", "", 50)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("city is required", func(t *testing.T) {
		svc := NewServiceImpl(new(MockRepository), new(MockDestinations), time.Minute, testLogger())
		_, err := svc.Search(ctx, "  ", "Japan", 3)
		assert.ErrorIs(t, err, types.ErrBadRequest)
	})
}

func TestServiceTopHotel(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("SearchByLocation", mock.Anything, "Lisbon", "Portugal", 1).
		Return([]types.Hotel{{ID: "h1", Name: "Casa Azul", Address: "Rua Augusta 1"}}, nil)
	repo.On("SearchByLocation", mock.Anything, "Nowhere", "", 1).Return([]types.Hotel{}, nil)

	svc := NewServiceImpl(repo, new(MockDestinations), time.Minute, testLogger())

	h, err := svc.TopHotel(ctx, "Lisbon", "Portugal")
	require.NoError(t, err)
	assert.Equal(t, "Casa Azul", h.Name)

	_, err = svc.TopHotel(ctx, "Nowhere", "")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestHandlerGetDestinationHotels(t *testing.T) {
	repo := new(MockRepository)
	repo.On("SearchByLocation", mock.Anything, "Lisbon", "Portugal", DefaultLimit).
		Return([]types.Hotel{{ID: "h1", Name: "Casa Azul", Rating: "4 Star"}}, nil)
	repo.On("SearchByLocation", mock.Anything, "Lisbon", "Portugal", 2).Return(nil, nil)
	destinations := new(MockDestinations)
	destinations.On("Get", mock.Anything, "lisbon").
		Return(&types.Destination{ID: "lisbon", City: "Lisbon", Country: "Portugal"}, nil)
	destinations.On("Get", mock.Anything, "nowhere").Return(nil, fmt.Errorf("x: %w", types.ErrNotFound))

	h := NewHandlerImpl(NewServiceImpl(repo, destinations, time.Minute, testLogger()), testLogger())
	r := chi.NewRouter()
	r.Get("/destinations/{id}/hotels", h.GetDestinationHotels)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"lists hotels", "/destinations/lisbon/hotels", http.StatusOK, `"name":"Casa Azul"`},
		{"empty list is an array", "/destinations/lisbon/hotels?limit=2", http.StatusOK, `[]`},
		{"unknown destination", "/destinations/nowhere/hotels", http.StatusNotFound, ""},
		{"bad limit", "/destinations/lisbon/hotels?limit=zero", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}
