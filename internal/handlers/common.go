package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"quizforge-backend/internal/models"
	"quizforge-backend/internal/services"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrLimitReached):
		writeJSON(w, http.StatusTooManyRequests, errorResp("LIMIT_REACHED", err.Error(), r))
		return
	case errors.Is(err, services.ErrInvalidFileType):
		writeJSON(w, http.StatusBadRequest, errorResp("UNSUPPORTED_FORMAT", err.Error(), r))
		return
	case errors.Is(err, services.ErrFileTooLarge), errors.Is(err, services.ErrInlineTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", err.Error(), r))
		return
	case errors.Is(err, services.ErrContentTooShort):
		writeJSON(w, http.StatusBadRequest, errorResp("CONTENT_TOO_SHORT", err.Error(), r))
		return
	case errors.Is(err, services.ErrTranscriptionFailed),
		errors.Is(err, services.ErrGenerationFailed),
		errors.Is(err, services.ErrNetworkFetch):
		// The wrapped cause carries provider error text; it is logged here
		// and never echoed to the client.
		log.Printf("Warning: upstream failure (request %s): %v", r.Header.Get("X-Request-ID"), err)
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", upstreamMessage(err), r))
		return
	}

	switch e := err.(type) {
	case *services.ValidationError:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", e.Fields, r))
	case *services.ConflictError:
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", e.Message, r))
	case *services.NotFoundError:
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", e.Message, r))
	case *services.UnauthorizedError:
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", e.Message, r))
	case *services.ForbiddenError:
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", e.Message, r))
	case *services.RateLimitError:
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", e.Message, r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}

// upstreamMessage maps a wrapped upstream error to the generic sentinel
// message clients are allowed to see.
func upstreamMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrTranscriptionFailed):
		return services.ErrTranscriptionFailed.Error()
	case errors.Is(err, services.ErrNetworkFetch):
		return services.ErrNetworkFetch.Error()
	default:
		return services.ErrGenerationFailed.Error()
	}
}

// applyQuizDefaults fills unset generation options.
func applyQuizDefaults(opts *models.QuizOptions) {
	if opts.Difficulty == "" {
		opts.Difficulty = "medium"
	}
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = 5
	}
	if opts.QuestionCount > 20 {
		opts.QuestionCount = 20
	}
	if opts.QuestionType == "" {
		opts.QuestionType = models.QuestionMultipleChoice
	}
	if opts.Locale == "" {
		opts.Locale = "en"
	}
}

// gateGeneration enforces the per-plan daily quota for identified users.
// Anonymous requests pass through. Returns false after writing the error
// response when the user may not generate.
func gateGeneration(w http.ResponseWriter, r *http.Request, limits *services.PlanLimitService, userID uuid.UUID) bool {
	if limits == nil || userID == uuid.Nil {
		return true
	}

	decision, err := limits.CanGenerate(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return false
	}
	if !decision.Allowed {
		writeJSON(w, http.StatusTooManyRequests, errorResp("LIMIT_REACHED", decision.Reason, r))
		return false
	}
	return true
}

// recordGeneration is best effort; a failed counter write never fails the
// request that already produced output.
func recordGeneration(r *http.Request, limits *services.PlanLimitService, userID uuid.UUID) {
	if limits == nil || userID == uuid.Nil {
		return
	}
	if err := limits.RecordGeneration(r.Context(), userID); err != nil {
		log.Printf("Warning: failed to record generation for user %s: %v", userID, err)
	}
}
