package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"quizforge-backend/internal/models"
	"quizforge-backend/internal/services"
)

type TranslateHandler struct {
	translate *services.TranslateService
}

func NewTranslateHandler(translate *services.TranslateService) *TranslateHandler {
	return &TranslateHandler{translate: translate}
}

func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req models.TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"text": "text is required"}, r))
		return
	}
	if req.TargetLocale == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"targetLocale": "targetLocale is required"}, r))
		return
	}

	translated, err := h.translate.Translate(r.Context(), req.Text, req.TargetLocale)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"translatedText": translated,
	})
}
