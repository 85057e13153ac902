package recommend

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/harborview-labs/concierge/internal/api"
	"github.com/harborview-labs/concierge/internal/types"
)

// Handler exposes the recommendation engine over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new recommendation handler instance.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RecommendationResponse is the JSON payload returned to the caller:
// the ranked list for programmatic use and the formatted sentence for
// direct display.
type RecommendationResponse struct {
	ResponseID string                 `json:"response_id"`
	GuestID    string                 `json:"guest_id"`
	Message    string                 `json:"message"`
	Fallback   bool                   `json:"fallback"`
	Items      []types.ScoredActivity `json:"items"`
}

// GetRecommendation godoc
// @Summary      Get Activity Recommendation
// @Description  Returns the ranked activity suggestion for a guest.
// @Tags         Recommendations
// @Produce      json
// @Param        guestID path string true "Guest identifier"
// @Success      200 {object} RecommendationResponse "Ranked suggestion"
// @Failure      400 {object} map[string]interface{} "Missing guest identifier"
// @Failure      503 {object} map[string]interface{} "Activity catalog empty"
// @Router       /guests/{guestID}/recommendation [get]
func (h *Handler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RecommendHandler").Start(r.Context(), "GetRecommendation", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/guests/{guestID}/recommendation"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetRecommendation"))

	guestID := strings.TrimSpace(chi.URLParam(r, "guestID"))
	if guestID == "" {
		l.WarnContext(ctx, "Missing guest identifier")
		span.SetStatus(codes.Error, "Missing guest identifier")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Guest identifier is required")
		return
	}

	rec, err := h.service.GetRecommendation(ctx, guestID)
	if err != nil {
		if errors.Is(err, types.ErrEmptyActivities) {
			// No activities, no possible recommendation. The UI presents
			// this as "try again later".
			l.WarnContext(ctx, "Activity catalog empty", slog.String("guestID", guestID))
			span.SetStatus(codes.Error, "Activity catalog empty")
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "No activities available, please try again later")
			return
		}
		l.ErrorContext(ctx, "Failed to get recommendation", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get recommendation")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to compute recommendation")
		return
	}

	resp := RecommendationResponse{
		ResponseID: uuid.NewString(),
		GuestID:    rec.GuestID,
		Message:    rec.Message,
		Fallback:   rec.Fallback,
		Items:      rec.Items,
	}
	span.SetStatus(codes.Ok, "Recommendation returned")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
