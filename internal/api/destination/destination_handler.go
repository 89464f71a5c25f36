package destination

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/somya-cb/ai-travel-assistant/internal/api"
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

// GetDestination godoc
// @Summary      Get a destination
// @Description  Returns a single destination record without its embedding.
// @Tags         Destinations
// @Produce      json
// @Param        id path string true "Destination ID"
// @Success      200 {object} types.Destination
// @Failure      404 {object} types.Response "Not found"
// @Failure      422 {object} types.Response "Malformed record"
// @Router       /destinations/{id} [get]
func (h *HandlerImpl) GetDestination(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("DestinationHandler").Start(r.Context(), "GetDestination", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/destinations/{id}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "GetDestination"))

	id := chi.URLParam(r, "id")
	if id == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "destination id is required")
		return
	}

	d, err := h.service.Get(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to get destination", slog.String("id", id), slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, d)
}
