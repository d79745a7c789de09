package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"quizforge-backend/internal/models"
)

type fakeFeedbackGenerator struct {
	result      *models.FeedbackResult
	err         error
	gotText     string
	gotAudience string
	gotLocale   string
}

func (f *fakeFeedbackGenerator) GenerateFeedback(ctx context.Context, explanation, audience, locale string) (*models.FeedbackResult, error) {
	f.gotText = explanation
	f.gotAudience = audience
	f.gotLocale = locale
	return f.result, f.err
}

func TestExplainFeedback_DefaultsApplied(t *testing.T) {
	gen := &fakeFeedbackGenerator{result: &models.FeedbackResult{
		Rating:   4,
		Feedback: "Clear explanation, add an example.",
	}}
	h := NewExplainHandler(gen, nil)

	rec := postJSON(t, h.ExplainFeedback, models.ExplainFeedbackRequest{
		Explanation: "Photosynthesis turns light energy into chemical energy inside chloroplasts.",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gen.gotAudience != "classmate" || gen.gotLocale != "en" {
		t.Fatalf("defaults not applied: audience=%q locale=%q", gen.gotAudience, gen.gotLocale)
	}

	var resp models.FeedbackResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Rating != 4 {
		t.Fatalf("expected rating 4, got %d", resp.Rating)
	}
}

func TestExplainFeedback_ShortExplanationRejected(t *testing.T) {
	gen := &fakeFeedbackGenerator{}
	h := NewExplainHandler(gen, nil)

	rec := postJSON(t, h.ExplainFeedback, models.ExplainFeedbackRequest{Explanation: "too short"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if resp.Error.Code != "CONTENT_TOO_SHORT" {
		t.Fatalf("expected CONTENT_TOO_SHORT, got %q", resp.Error.Code)
	}
	if gen.gotText != "" {
		t.Fatalf("generator must not be called for rejected input")
	}
}

func TestExplainFeedback_InvalidUserID(t *testing.T) {
	h := NewExplainHandler(&fakeFeedbackGenerator{}, nil)

	rec := postJSON(t, h.ExplainFeedback, models.ExplainFeedbackRequest{
		Explanation: "Photosynthesis turns light energy into chemical energy inside chloroplasts.",
		UserID:      "not-a-uuid",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if resp.Error.Fields["userId"] == "" {
		t.Fatalf("expected a userId field error, got %+v", resp.Error)
	}
}
