package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"quizforge-backend/internal/middleware"
	"quizforge-backend/internal/models"
	"quizforge-backend/internal/services"
)

// videoSource is the slice of YouTubeService the handler needs; tests
// substitute fakes.
type videoSource interface {
	GetTranscript(ctx context.Context, videoID string) (string, error)
	DownloadAudio(videoURL string) ([]byte, string, error)
	GetOEmbed(videoID string) (*services.OEmbedMetadata, error)
}

type YouTubeHandler struct {
	youtube     videoSource
	transcriber services.Transcriber
	generator   questionGenerator
	limits      *services.PlanLimitService
}

func NewYouTubeHandler(yt videoSource, transcriber services.Transcriber, generator questionGenerator, limits *services.PlanLimitService) *YouTubeHandler {
	return &YouTubeHandler{youtube: yt, transcriber: transcriber, generator: generator, limits: limits}
}

// YouTubeToQuestions builds a quiz from a YouTube video. Caption tracks are
// the preferred source; videos without captions fall back to downloading and
// transcribing the audio, then to oEmbed metadata as a last resort.
func (h *YouTubeHandler) YouTubeToQuestions(w http.ResponseWriter, r *http.Request) {
	var req models.YouTubeToQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	videoID := services.ExtractVideoID(req.YouTubeURL)
	if videoID == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"youtubeUrl": "Not a valid YouTube video URL"}, r))
		return
	}

	applyQuizDefaults(&req.QuizOptions)

	userID := middleware.GetUserID(r.Context())
	if !gateGeneration(w, r, h.limits, userID) {
		return
	}

	transcript, err := h.youtube.GetTranscript(r.Context(), videoID)
	if err != nil || len(strings.TrimSpace(transcript)) < 10 {
		transcript = h.transcriptFallback(r, videoID, req.YouTubeURL)
	}
	if len(strings.TrimSpace(transcript)) < 10 {
		handleServiceError(w, r, services.ErrTranscriptionFailed)
		return
	}

	clamped := services.ClampTranscript(transcript, services.MaxTranscriptQuiz)
	questions, err := h.generator.GenerateQuestions(r.Context(), clamped, req.QuizOptions)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	recordGeneration(r, h.limits, userID)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"transcript": transcript,
		"questions":  questions,
		"videoId":    videoID,
	})
}

// transcriptFallback tries audio transcription, then oEmbed metadata. Returns
// an empty string when every source fails.
func (h *YouTubeHandler) transcriptFallback(r *http.Request, videoID, videoURL string) string {
	audio, mimeType, err := h.youtube.DownloadAudio(videoURL)
	if err == nil {
		transcript, terr := h.transcriber.TranscribeAudio(r.Context(), audio, mimeType)
		if terr == nil && len(strings.TrimSpace(transcript)) >= 10 {
			return transcript
		}
	}

	meta, err := h.youtube.GetOEmbed(videoID)
	if err != nil {
		return ""
	}

	return fmt.Sprintf(
		"This is a YouTube video titled %q by %s. No transcript is available, so base the study material on the topic the title describes.",
		meta.Title, meta.AuthorName)
}
