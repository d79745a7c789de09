package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"quizforge-backend/internal/middleware"
	"quizforge-backend/internal/models"
	"quizforge-backend/internal/services"
)

type MediaHandler struct {
	upload    *services.UploadService
	extract   *services.ExtractService
	generator questionGenerator
	limits    *services.PlanLimitService
}

func NewMediaHandler(upload *services.UploadService, extract *services.ExtractService, generator questionGenerator, limits *services.PlanLimitService) *MediaHandler {
	return &MediaHandler{upload: upload, extract: extract, generator: generator, limits: limits}
}

// MediaToQuestions accepts either a multipart upload or a JSON body carrying
// a fileUrl from the pre-signed upload flow, then runs the full
// transcribe-and-generate pipeline.
func (h *MediaHandler) MediaToQuestions(w http.ResponseWriter, r *http.Request) {
	var (
		inline   []byte
		fileURL  string
		filename string
		opts     models.QuizOptions
	)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(services.InlineUploadLimit); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart body", r))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "A file part is required", r))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, services.MaxUploadSize+1))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Failed to read uploaded file", r))
			return
		}

		inline = data
		filename = services.SanitizeFilename(header.Filename)
		opts = quizOptionsFromForm(r)
	} else {
		var req models.MediaToQuestionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
			return
		}
		if req.FileURL == "" {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"fileUrl": "fileUrl is required"}, r))
			return
		}
		fileURL = req.FileURL
		filename = filenameFromURL(fileURL)
		opts = req.QuizOptions
	}

	applyQuizDefaults(&opts)

	userID := middleware.GetUserID(r.Context())
	if !gateGeneration(w, r, h.limits, userID) {
		return
	}

	data, err := h.upload.RouteUpload(r.Context(), inline, fileURL, filename)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	transcript, _, err := h.extract.Extract(r.Context(), data, filename)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	clamped := services.ClampTranscript(transcript, services.MaxTranscriptQuiz)
	questions, err := h.generator.GenerateQuestions(r.Context(), clamped, opts)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	recordGeneration(r, h.limits, userID)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"transcript": transcript,
		"questions":  questions,
		"filename":   filename,
	})
}

// filenameFromURL takes the last path segment, dropping any query string a
// signed URL carries.
func filenameFromURL(fileURL string) string {
	path := fileURL
	if u, err := url.Parse(fileURL); err == nil {
		path = u.Path
	}
	return services.SanitizeFilename(path[strings.LastIndex(path, "/")+1:])
}

func quizOptionsFromForm(r *http.Request) models.QuizOptions {
	count, _ := strconv.Atoi(r.FormValue("questionCount"))
	return models.QuizOptions{
		Difficulty:    r.FormValue("difficulty"),
		QuestionCount: count,
		QuestionType:  r.FormValue("questionType"),
		Locale:        r.FormValue("locale"),
	}
}
