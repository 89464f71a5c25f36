package profiles

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/somya-cb/ai-travel-assistant/app/middleware"
	"github.com/somya-cb/ai-travel-assistant/internal/api"
	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	CreateProfile(w http.ResponseWriter, r *http.Request)
	GetProfile(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// CreateProfile godoc
// @Summary      Create or replace the traveler profile
// @Description  Validates the onboarding answers and stores them for the authenticated user
// @Tags         Profiles
// @Accept       json
// @Produce      json
// @Param        profile body types.CreateTravelerProfileParams true "Onboarding answers"
// @Success      201 {object} types.TravelerProfile
// @Failure      400 {object} types.Response "Invalid profile"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /profiles [post]
func (h *HandlerImpl) CreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ProfilesHandler").Start(r.Context(), "CreateProfile", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/profiles"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "CreateProfile"))

	userID, ok := appMiddleware.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	span.SetAttributes(semconv.EnduserIDKey.String(userID.String()))

	var params types.CreateTravelerProfileParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Invalid profile payload", slog.Any("error", err))
		span.SetStatus(codes.Error, "bad payload")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.service.CreateProfile(ctx, userID, params)
	if err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, profile)
}

// GetProfile godoc
// @Summary      Get the traveler profile
// @Tags         Profiles
// @Produce      json
// @Success      200 {object} types.TravelerProfile
// @Failure      404 {object} types.Response "No profile yet"
// @Security     BearerAuth
// @Router       /profiles/me [get]
func (h *HandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ProfilesHandler").Start(r.Context(), "GetProfile", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/profiles/me"),
	))
	defer span.End()

	userID, ok := appMiddleware.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to fetch profile", slog.String("userID", userID.String()), slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, profile)
}
