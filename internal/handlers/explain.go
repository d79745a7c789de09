package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"quizforge-backend/internal/models"
	"quizforge-backend/internal/services"
)

type feedbackGenerator interface {
	GenerateFeedback(ctx context.Context, explanation, audience, locale string) (*models.FeedbackResult, error)
}

type ExplainHandler struct {
	generator feedbackGenerator
	limits    *services.PlanLimitService
}

func NewExplainHandler(g feedbackGenerator, limits *services.PlanLimitService) *ExplainHandler {
	return &ExplainHandler{generator: g, limits: limits}
}

// ExplainFeedback rates a learner's own explanation of a concept. The userId
// is optional; anonymous requests are not quota gated.
func (h *ExplainHandler) ExplainFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.ExplainFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	explanation := strings.TrimSpace(req.Explanation)
	if len([]rune(explanation)) < 10 {
		handleServiceError(w, r, services.ErrContentTooShort)
		return
	}

	audience := req.Audience
	if audience == "" {
		audience = "classmate"
	}
	locale := req.Locale
	if locale == "" {
		locale = "en"
	}

	var userID uuid.UUID
	if req.UserID != "" {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"userId": "Invalid userId"}, r))
			return
		}
		userID = parsed
	}

	if !gateGeneration(w, r, h.limits, userID) {
		return
	}

	clamped := services.ClampTranscript(explanation, services.MaxTranscriptExplain)
	result, err := h.generator.GenerateFeedback(r.Context(), clamped, audience, locale)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	recordGeneration(r, h.limits, userID)

	writeJSON(w, http.StatusOK, result)
}
