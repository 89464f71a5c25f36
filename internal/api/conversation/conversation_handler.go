package conversation

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/somya-cb/ai-travel-assistant/app/middleware"
	"github.com/somya-cb/ai-travel-assistant/internal/api"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	PostTurn(w http.ResponseWriter, r *http.Request)
	GetConversation(w http.ResponseWriter, r *http.Request)
	ResetConversation(w http.ResponseWriter, r *http.Request)
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

type TurnRequest struct {
	Message string `json:"message"`
}

// PostTurn godoc
// @Summary      Submit one user utterance
// @Description  Runs a dialogue turn and returns the reply, the new phase and any recommendations or itinerary
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        conversationID path string true "Conversation ID"
// @Param        request body TurnRequest true "User utterance"
// @Success      200 {object} TurnResponse
// @Failure      400 {object} types.Response "Empty utterance"
// @Failure      404 {object} types.Response "Conversation belongs to another user"
// @Security     BearerAuth
// @Router       /conversations/{conversationID}/turns [post]
func (h *HandlerImpl) PostTurn(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "PostTurn", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/conversations/{conversationID}/turns"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "PostTurn"))

	userID, ok := appMiddleware.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "conversation id is required")
		return
	}
	span.SetAttributes(attribute.String("conversation.id", conversationID))

	var req TurnRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid turn payload", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.HandleTurn(ctx, userID, conversationID, req.Message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "turn rejected")
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}

	l.DebugContext(ctx, "Turn processed",
		slog.String("conversationID", conversationID),
		slog.String("phase", string(resp.Phase)),
		slog.Bool("handled", resp.Handled))
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// GetConversation godoc
// @Summary      Current conversation state
// @Tags         Conversations
// @Produce      json
// @Param        conversationID path string true "Conversation ID"
// @Success      200 {object} types.ConversationState
// @Failure      404 {object} types.Response "Not found"
// @Security     BearerAuth
// @Router       /conversations/{conversationID} [get]
func (h *HandlerImpl) GetConversation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "GetConversation", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/conversations/{conversationID}"),
	))
	defer span.End()

	userID, ok := appMiddleware.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	state, err := h.service.GetState(ctx, userID, chi.URLParam(r, "conversationID"))
	if err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, state)
}

// ResetConversation godoc
// @Summary      Reset a conversation to idle
// @Tags         Conversations
// @Param        conversationID path string true "Conversation ID"
// @Success      204
// @Security     BearerAuth
// @Router       /conversations/{conversationID} [delete]
func (h *HandlerImpl) ResetConversation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "ResetConversation", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/conversations/{conversationID}"),
	))
	defer span.End()

	userID, ok := appMiddleware.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.service.Reset(ctx, userID, chi.URLParam(r, "conversationID")); err != nil {
		h.logger.ErrorContext(ctx, "Failed to reset conversation", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
