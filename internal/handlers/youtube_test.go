package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"quizforge-backend/internal/models"
	"quizforge-backend/internal/services"
)

type fakeVideoSource struct {
	transcript    string
	transcriptErr error
	audio         []byte
	audioMime     string
	audioErr      error
	meta          *services.OEmbedMetadata
	metaErr       error

	downloads int
	oembeds   int
}

func (f *fakeVideoSource) GetTranscript(ctx context.Context, videoID string) (string, error) {
	return f.transcript, f.transcriptErr
}

func (f *fakeVideoSource) DownloadAudio(videoURL string) ([]byte, string, error) {
	f.downloads++
	return f.audio, f.audioMime, f.audioErr
}

func (f *fakeVideoSource) GetOEmbed(videoID string) (*services.OEmbedMetadata, error) {
	f.oembeds++
	return f.meta, f.metaErr
}

func TestYouTubeToQuestions_CaptionPath(t *testing.T) {
	source := &fakeVideoSource{transcript: "Tides are caused by the gravitational pull of the moon and sun."}
	gen := &fakeGenerator{questions: []models.Question{{
		Question:      "What causes tides?",
		Type:          models.QuestionOpenEnded,
		CorrectAnswer: "Gravity of the moon and sun",
	}}}
	h := NewYouTubeHandler(source, &stubTranscriber{}, gen, nil)

	rec := postJSON(t, h.YouTubeToQuestions, models.YouTubeToQuestionsRequest{
		YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if source.downloads != 0 || source.oembeds != 0 {
		t.Fatalf("caption path must not touch fallbacks, got %d downloads %d oembeds",
			source.downloads, source.oembeds)
	}

	var resp struct {
		VideoID   string            `json:"videoId"`
		Questions []models.Question `json:"questions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.VideoID != "dQw4w9WgXcQ" || len(resp.Questions) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestYouTubeToQuestions_AudioFallback(t *testing.T) {
	source := &fakeVideoSource{
		transcriptErr: errors.New("no subtitles available"),
		audio:         []byte("fake-audio"),
		audioMime:     "audio/mp4",
	}
	transcriber := &stubTranscriber{transcript: "The lecture covers the basics of plate tectonics."}
	gen := &fakeGenerator{questions: []models.Question{{Question: "q", Type: models.QuestionOpenEnded, CorrectAnswer: "a"}}}
	h := NewYouTubeHandler(source, transcriber, gen, nil)

	rec := postJSON(t, h.YouTubeToQuestions, models.YouTubeToQuestionsRequest{
		YouTubeURL: "https://youtu.be/dQw4w9WgXcQ",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if source.downloads != 1 || transcriber.calls != 1 {
		t.Fatalf("expected one download and one transcription, got %d/%d",
			source.downloads, transcriber.calls)
	}
	if source.oembeds != 0 {
		t.Fatalf("oEmbed must not be consulted when transcription succeeds")
	}
	if !strings.Contains(rec.Body.String(), "plate tectonics") {
		t.Fatalf("expected the transcribed text in the response: %s", rec.Body.String())
	}
}

func TestYouTubeToQuestions_OEmbedLastResort(t *testing.T) {
	source := &fakeVideoSource{
		transcriptErr: errors.New("no subtitles available"),
		audioErr:      errors.New("no audio stream"),
		meta:          &services.OEmbedMetadata{Title: "Photosynthesis Explained", AuthorName: "Bio Channel"},
	}
	gen := &fakeGenerator{questions: []models.Question{{Question: "q", Type: models.QuestionOpenEnded, CorrectAnswer: "a"}}}
	h := NewYouTubeHandler(source, &stubTranscriber{}, gen, nil)

	rec := postJSON(t, h.YouTubeToQuestions, models.YouTubeToQuestionsRequest{
		YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if source.oembeds != 1 {
		t.Fatalf("expected the oEmbed fallback to run once, got %d", source.oembeds)
	}
	if !strings.Contains(gen.gotText, "Photosynthesis Explained") {
		t.Fatalf("generator input should be built from the video metadata: %q", gen.gotText)
	}
}

func TestYouTubeToQuestions_InvalidURL(t *testing.T) {
	h := NewYouTubeHandler(&fakeVideoSource{}, &stubTranscriber{}, &fakeGenerator{}, nil)

	rec := postJSON(t, h.YouTubeToQuestions, models.YouTubeToQuestionsRequest{
		YouTubeURL: "https://example.com/watch?v=dQw4w9WgXcQ",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if resp.Error.Fields["youtubeUrl"] == "" {
		t.Fatalf("expected a youtubeUrl field error, got %+v", resp.Error)
	}
}

func TestYouTubeToQuestions_AllSourcesFail(t *testing.T) {
	source := &fakeVideoSource{
		transcriptErr: errors.New("no subtitles available"),
		audioErr:      errors.New("no audio stream"),
		metaErr:       errors.New("oembed 404"),
	}
	h := NewYouTubeHandler(source, &stubTranscriber{}, &fakeGenerator{}, nil)

	rec := postJSON(t, h.YouTubeToQuestions, models.YouTubeToQuestionsRequest{
		YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if resp.Error.Code != "UPSTREAM_ERROR" {
		t.Fatalf("expected UPSTREAM_ERROR, got %q", resp.Error.Code)
	}
}
