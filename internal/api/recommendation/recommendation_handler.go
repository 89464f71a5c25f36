package recommendation

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/somya-cb/ai-travel-assistant/app/middleware"
	"github.com/somya-cb/ai-travel-assistant/internal/api"
	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

// ProfileSource loads the stored persona of a user.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.TravelerProfile, error)
}

type HandlerImpl struct {
	service  Service
	profiles ProfileSource
	logger   *slog.Logger
}

func NewHandlerImpl(service Service, profiles ProfileSource, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service:  service,
		profiles: profiles,
		logger:   logger,
	}
}

// Recommend godoc
// @Summary      Rank destinations for the caller
// @Description  Synthesizes a query from the stored profile and request, then ranks destinations by the blended score.
// @Tags         Recommendations
// @Accept       json
// @Produce      json
// @Param        request body types.RecommendationRequest true "Search mode, filters and optional query"
// @Success      200 {object} types.RecommendationResponse
// @Failure      503 {object} types.Response "Retrieval unavailable"
// @Security     BearerAuth
// @Router       /recommendations [post]
func (h *HandlerImpl) Recommend(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RecommendationHandler").Start(r.Context(), "Recommend", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/recommendations"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "Recommend"))

	userID, ok := appMiddleware.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req types.RecommendationRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Mode != "" && !req.Mode.Valid() {
		api.ErrorResponse(w, r, http.StatusBadRequest, "mode must be surprise or filter_search")
		return
	}
	if req.Filters.BudgetLevel != "" {
		level, ok := types.ParseBudgetLevel(string(req.Filters.BudgetLevel))
		if !ok {
			api.ErrorResponse(w, r, http.StatusBadRequest, "filters.budget_level must be Budget, Mid-Range or Luxury")
			return
		}
		req.Filters.BudgetLevel = level
	}

	profile, err := h.profiles.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		l.ErrorContext(ctx, "Failed to load profile", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}

	resp, err := h.service.Recommend(ctx, profile, req)
	if err != nil {
		span.RecordError(err)
		status := api.StatusForError(err)
		if resp != nil {
			api.WriteJSONResponse(w, r, status, map[string]interface{}{
				"success":         false,
				"error":           err.Error(),
				"query":           resp.Query,
				"recommendations": resp.Recommendations,
			})
			return
		}
		api.ErrorResponse(w, r, status, err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
