package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"quizforge-backend/internal/middleware"
	"quizforge-backend/internal/models"
	"quizforge-backend/internal/services"
)

// questionGenerator is the slice of GeminiService the quiz endpoints need.
type questionGenerator interface {
	GenerateQuestions(ctx context.Context, transcript string, opts models.QuizOptions) ([]models.Question, error)
}

type GenerateHandler struct {
	generator questionGenerator
	limits    *services.PlanLimitService
}

func NewGenerateHandler(generator questionGenerator, limits *services.PlanLimitService) *GenerateHandler {
	return &GenerateHandler{generator: generator, limits: limits}
}

func (h *GenerateHandler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text := strings.TrimSpace(req.Text)
	if len([]rune(text)) < 10 {
		handleServiceError(w, r, services.ErrContentTooShort)
		return
	}
	applyQuizDefaults(&req.QuizOptions)

	userID := middleware.GetUserID(r.Context())
	if !gateGeneration(w, r, h.limits, userID) {
		return
	}

	transcript := services.ClampTranscript(text, services.MaxTranscriptQuiz)
	questions, err := h.generator.GenerateQuestions(r.Context(), transcript, req.QuizOptions)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	recordGeneration(r, h.limits, userID)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"questions": questions,
	})
}
