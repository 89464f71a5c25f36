package hotel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

const DefaultLimit = 10

var _ Service = (*ServiceImpl)(nil)

// DestinationLookup resolves a destination id to its record.
type DestinationLookup interface {
	Get(ctx context.Context, id string) (*types.Destination, error)
}

// Service finds places to stay for a destination.
type Service interface {
	Search(ctx context.Context, city, country string, limit int) ([]types.Hotel, error)
	// TopHotel is the best rated hotel in the city, or ErrNotFound.
	TopHotel(ctx context.Context, city, country string) (*types.Hotel, error)
	ForDestination(ctx context.Context, destinationID string, limit int) ([]types.Hotel, error)
}

type ServiceImpl struct {
	logger       *slog.Logger
	repo         Repository
	destinations DestinationLookup
	cache        *cache.Cache
}

func NewServiceImpl(repo Repository, destinations DestinationLookup, cacheTTL time.Duration, logger *slog.Logger) *ServiceImpl {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &ServiceImpl{
		logger:       logger,
		repo:         repo,
		destinations: destinations,
		cache:        cache.New(cacheTTL, 2*cacheTTL),
	}
}

func (s *ServiceImpl) Search(ctx context.Context, city, country string, limit int) ([]types.Hotel, error) {
	if strings.TrimSpace(city) == "" {
		return nil, fmt.Errorf("%w: city is required", types.ErrBadRequest)
	}
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}

	key := fmt.Sprintf("%s|%s|%d", strings.ToLower(city), strings.ToLower(country), limit)
	if cached, found := s.cache.Get(key); found {
		if hotels, ok := cached.([]types.Hotel); ok {
			return hotels, nil
		}
	}

	hotels, err := s.repo.SearchByLocation(ctx, city, country, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, hotels, cache.DefaultExpiration)
	return hotels, nil
}

func (s *ServiceImpl) TopHotel(ctx context.Context, city, country string) (*types.Hotel, error) {
	hotels, err := s.Search(ctx, city, country, 1)
	if err != nil {
		return nil, err
	}
	if len(hotels) == 0 {
		return nil, fmt.Errorf("hotel in %s: %w", city, types.ErrNotFound)
	}
	h := hotels[0]
	return &h, nil
}

func (s *ServiceImpl) ForDestination(ctx context.Context, destinationID string, limit int) ([]types.Hotel, error) {
	d, err := s.destinations.Get(ctx, destinationID)
	if err != nil {
		return nil, err
	}
	hotels, err := s.Search(ctx, d.City, d.Country, limit)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Hotels for destination",
		slog.String("destination", destinationID), slog.Int("count", len(hotels)))
	return hotels, nil
}
