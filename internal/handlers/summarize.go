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

type summarizer interface {
	GenerateSummary(ctx context.Context, transcript, setting, locale string) (*models.SummaryResult, error)
}

type SummaryHandler struct {
	summarizer summarizer
	limits     *services.PlanLimitService
}

func NewSummaryHandler(s summarizer, limits *services.PlanLimitService) *SummaryHandler {
	return &SummaryHandler{summarizer: s, limits: limits}
}

func (h *SummaryHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.UserID == "" {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "userId is required", r))
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Invalid userId", r))
		return
	}

	text := strings.TrimSpace(req.Text)
	if len([]rune(text)) < 10 {
		handleServiceError(w, r, services.ErrContentTooShort)
		return
	}

	setting := req.Setting
	switch setting {
	case "brief", "in-depth", "key-points":
	case "":
		setting = "brief"
	default:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"setting": "setting must be brief, in-depth or key-points"}, r))
		return
	}
	locale := req.Locale
	if locale == "" {
		locale = "en"
	}

	if !gateGeneration(w, r, h.limits, userID) {
		return
	}

	transcript := services.ClampTranscript(text, services.MaxTranscriptSummary)
	result, err := h.summarizer.GenerateSummary(r.Context(), transcript, setting, locale)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	recordGeneration(r, h.limits, userID)

	writeJSON(w, http.StatusOK, result)
}
