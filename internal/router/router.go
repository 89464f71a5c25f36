package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appLogger "github.com/somya-cb/ai-travel-assistant/app/logger"
	"github.com/somya-cb/ai-travel-assistant/internal/api/conversation"
	"github.com/somya-cb/ai-travel-assistant/internal/api/destination"
	"github.com/somya-cb/ai-travel-assistant/internal/api/hotel"
	"github.com/somya-cb/ai-travel-assistant/internal/api/profiles"
	"github.com/somya-cb/ai-travel-assistant/internal/api/recommendation"
)

// Config contains dependencies needed for the router setup
type Config struct {
	ProfilesHandler        *profiles.HandlerImpl
	DestinationHandler     *destination.HandlerImpl
	HotelHandler           *hotel.HandlerImpl
	RecommendationHandler  *recommendation.HandlerImpl
	ConversationHandler    *conversation.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
	RequestTimeout         time.Duration
	Logger                 *slog.Logger
}

// SetupRouter initializes and configures the main application router.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appLogger.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5, "application/json"))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/profiles", cfg.ProfilesHandler.CreateProfile)
			r.Get("/profiles/me", cfg.ProfilesHandler.GetProfile)

			r.Post("/recommendations", cfg.RecommendationHandler.Recommend)
			r.Get("/destinations/{id}", cfg.DestinationHandler.GetDestination)
			r.Get("/destinations/{id}/hotels", cfg.HotelHandler.GetDestinationHotels)

			r.Route("/conversations/{conversationID}", func(r chi.Router) {
				r.Get("/", cfg.ConversationHandler.GetConversation)
				r.Delete("/", cfg.ConversationHandler.ResetConversation)
				r.Post("/turns", cfg.ConversationHandler.PostTurn)
			})
		})
	})

	return r
}
