package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"quizforge-backend/internal/models"
	"quizforge-backend/internal/services"
)

// Inline text uploads cap out well below the media ceiling.
const maxTextUploadSize = 10 * 1024 * 1024

type UploadHandler struct {
	upload  *services.UploadService
	extract *services.ExtractService
}

func NewUploadHandler(upload *services.UploadService, extract *services.ExtractService) *UploadHandler {
	return &UploadHandler{upload: upload, extract: extract}
}

// GetUploadURL issues a pre-signed blob-store POST descriptor so large media
// files skip the API server entirely.
func (h *UploadHandler) GetUploadURL(w http.ResponseWriter, r *http.Request) {
	var req models.UploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Filename == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"filename": "filename is required"}, r))
		return
	}
	if !services.AllowedExtension(req.Filename) {
		handleServiceError(w, r, services.ErrInvalidFileType)
		return
	}

	signed, err := h.upload.CreateSignedUpload(services.SanitizeFilename(req.Filename), req.ContentType)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, signed)
}

// UploadFile takes small text documents inline and returns the extracted
// text. Audio and video must go through the pre-signed path.
func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxTextUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart body", r))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "A file part is required", r))
		return
	}
	defer file.Close()

	filename := services.SanitizeFilename(header.Filename)
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".txt" && ext != ".md" {
		handleServiceError(w, r, services.ErrInvalidFileType)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxTextUploadSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Failed to read uploaded file", r))
		return
	}
	if len(data) > maxTextUploadSize {
		handleServiceError(w, r, services.ErrFileTooLarge)
		return
	}

	text, _, err := h.extract.Extract(r.Context(), data, filename)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"text":     text,
		"filename": filename,
		"fileSize": len(data),
	})
}
