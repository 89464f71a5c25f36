package hotel

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/somya-cb/ai-travel-assistant/internal/api"
	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

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

// GetDestinationHotels godoc
// @Summary      Hotels in a destination
// @Description  Lists hotels in the destination's city, best rated first.
// @Tags         Destinations
// @Produce      json
// @Param        id    path  string true  "Destination ID"
// @Param        limit query int    false "Maximum hotels (1-10)"
// @Success      200 {array}  types.Hotel
// @Failure      400 {object} types.Response "Bad limit"
// @Failure      404 {object} types.Response "Unknown destination"
// @Router       /destinations/{id}/hotels [get]
func (h *HandlerImpl) GetDestinationHotels(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HotelHandler").Start(r.Context(), "GetDestinationHotels", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/destinations/{id}/hotels"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "GetDestinationHotels"))

	id := chi.URLParam(r, "id")
	if id == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "destination id is required")
		return
	}

	limit := DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	span.SetAttributes(attribute.String("destination.id", id), attribute.Int("limit", limit))

	hotels, err := h.service.ForDestination(ctx, id, limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list hotels", slog.String("id", id), slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}
	if hotels == nil {
		hotels = []types.Hotel{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, hotels)
}
