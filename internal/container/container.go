package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sashabaranov/go-openai"

	database "github.com/somya-cb/ai-travel-assistant/app/db"
	"github.com/somya-cb/ai-travel-assistant/config"
	"github.com/somya-cb/ai-travel-assistant/internal/api/conversation"
	"github.com/somya-cb/ai-travel-assistant/internal/api/destination"
	"github.com/somya-cb/ai-travel-assistant/internal/api/embedding"
	generativeAI "github.com/somya-cb/ai-travel-assistant/internal/api/generative_ai"
	"github.com/somya-cb/ai-travel-assistant/internal/api/hotel"
	"github.com/somya-cb/ai-travel-assistant/internal/api/profiles"
	"github.com/somya-cb/ai-travel-assistant/internal/api/recommendation"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool
	Redis  redis.UniversalClient

	Embedder           embedding.Embedder
	DestinationService *destination.ServiceImpl

	ProfilesHandler       *profiles.HandlerImpl
	DestinationHandler    *destination.HandlerImpl
	HotelHandler          *hotel.HandlerImpl
	RecommendationHandler *recommendation.HandlerImpl
	ConversationHandler   *conversation.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	c := &Container{Config: cfg, Logger: logger, Pool: pool}

	c.Embedder, err = newEmbedder(ctx, cfg, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	// destinations
	destinationRepo := destination.NewRepository(pool, cfg.Embedding.Dimension, logger)
	c.DestinationService = destination.NewServiceImpl(destinationRepo, cfg.Recommendation.Concurrency, cfg.Embedding.CacheTTL, logger)
	c.DestinationHandler = destination.NewHandlerImpl(c.DestinationService, logger)

	// hotels
	hotelService := hotel.NewServiceImpl(hotel.NewRepository(pool, logger), c.DestinationService, cfg.Embedding.CacheTTL, logger)
	c.HotelHandler = hotel.NewHandlerImpl(hotelService, logger)

	// profiles
	profilesRepo := profiles.NewPostgresRepository(pool, logger)
	profilesService := profiles.NewServiceImpl(profilesRepo, logger)
	c.ProfilesHandler = profiles.NewHandlerImpl(profilesService, logger)

	// recommendations
	w := cfg.Recommendation.Weights
	recommendationService, err := recommendation.NewServiceImpl(c.DestinationService, c.Embedder, recommendation.Options{
		Weights:       recommendation.Weights{Semantic: w.Semantic, Activity: w.Activity, Budget: w.Budget, Duration: w.Duration},
		TopN:          cfg.Recommendation.TopN,
		CandidatePool: cfg.Recommendation.CandidatePool,
		Timeout:       cfg.Recommendation.StoreTimeout,
	}, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	c.RecommendationHandler = recommendation.NewHandlerImpl(recommendationService, profilesService, logger)

	// itineraries; without a key every itinerary is the fallback text
	var generator generativeAI.TextGenerator
	if client, err := generativeAI.NewAIClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model, logger); err != nil {
		logger.Warn("Text generation disabled", slog.Any("error", err))
	} else {
		generator = client
	}
	writer := generativeAI.NewItineraryWriter(generator, cfg.LLM.Timeout, cfg.Conversation.MaxItineraryDays, logger)

	// conversations
	store, err := c.newConversationStore(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}
	engine := conversation.NewEngine(cfg.Conversation.MaxItineraryDays, cfg.Recommendation.TopN)
	conversationService := conversation.NewServiceImpl(engine, store, profilesService, recommendationService, writer, c.DestinationService, hotelService, logger)
	c.ConversationHandler = conversation.NewHandlerImpl(conversationService, logger)

	return c, nil
}

func newEmbedder(ctx context.Context, cfg *config.Config, logger *slog.Logger) (embedding.Embedder, error) {
	var base embedding.Embedder
	switch cfg.Embedding.Provider {
	case "openai":
		if cfg.Embedding.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("embedding provider openai needs OPENAI_API_KEY")
		}
		base = embedding.NewOpenAIEmbedder(openai.NewClient(cfg.Embedding.OpenAIAPIKey), cfg.Embedding.Model, cfg.Embedding.Dimension, logger)
	default:
		gemini, err := embedding.NewGeminiEmbedder(ctx, cfg.LLM.APIKey, cfg.Embedding.Model, cfg.Embedding.Dimension, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini embedder: %w", err)
		}
		base = gemini
	}
	logger.Info("Embedder ready",
		slog.String("provider", cfg.Embedding.Provider),
		slog.String("model", cfg.Embedding.Model),
		slog.Int("dimension", cfg.Embedding.Dimension))
	return embedding.NewCachedEmbedder(base, cfg.Embedding.CacheTTL, logger), nil
}

func (c *Container) newConversationStore(ctx context.Context) (conversation.Store, error) {
	cfg := c.Config.Conversation
	if cfg.Store != "redis" {
		return conversation.NewPostgresStore(c.Pool, cfg.TTL, c.Logger), nil
	}

	r := c.Config.Repositories.Redis
	client := redis.NewClient(&redis.Options{Addr: r.Addr, Password: r.Password, DB: r.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		c.Logger.Error("Failed to connect to redis", slog.String("addr", r.Addr), slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Redis = client
	c.Logger.Info("Conversation state stored in redis", slog.String("addr", r.Addr))
	return conversation.NewRedisStore(client, cfg.TTL, c.Logger), nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations() error {
	dbConfig, err := database.NewDatabaseConfig(c.Config, c.Logger)
	if err != nil {
		return err
	}
	return database.RunMigrations(dbConfig.ConnectionURL, c.Logger)
}
