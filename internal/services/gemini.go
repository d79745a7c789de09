package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"quizforge-backend/internal/models"
)

const geminiModelName = "gemini-3-flash-preview"

// GeminiService drives every hosted-model call: quiz, summary and feedback
// generation plus audio/video transcription. Each mode has a fixed temperature
// and output-token ceiling; a failed structured attempt falls through to the
// free-text path, never to a retry of the same call.
type GeminiService struct {
	client *genai.Client

	quizModel     *genai.GenerativeModel // schema-constrained JSON
	quizFreeModel *genai.GenerativeModel
	summaryModel  *genai.GenerativeModel
	feedbackModel *genai.GenerativeModel
	transcribe    *genai.GenerativeModel
	rateChan      chan struct{} // Token bucket
}

func NewGeminiService(apiKey string, concurrentReqs int) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	quizModel := client.GenerativeModel(geminiModelName)
	quizModel.SetTemperature(0.8)
	quizModel.SetTopP(0.95)
	quizModel.SetMaxOutputTokens(4096)
	quizModel.ResponseMIMEType = "application/json"
	quizModel.ResponseSchema = quizResponseSchema()

	quizFreeModel := client.GenerativeModel(geminiModelName)
	quizFreeModel.SetTemperature(0.8)
	quizFreeModel.SetTopP(0.95)
	quizFreeModel.SetMaxOutputTokens(4096)

	summaryModel := client.GenerativeModel(geminiModelName)
	summaryModel.SetTemperature(0.4)
	summaryModel.SetTopP(0.95)
	summaryModel.SetMaxOutputTokens(2048)

	feedbackModel := client.GenerativeModel(geminiModelName)
	feedbackModel.SetTemperature(0.3)
	feedbackModel.SetTopP(0.95)
	feedbackModel.SetMaxOutputTokens(1024)

	transcribeModel := client.GenerativeModel(geminiModelName)
	transcribeModel.SetTemperature(0.2)

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:        client,
		quizModel:     quizModel,
		quizFreeModel: quizFreeModel,
		summaryModel:  summaryModel,
		feedbackModel: feedbackModel,
		transcribe:    transcribeModel,
		rateChan:      rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// GenerateQuestions produces quiz questions from a transcript. Primary path
// is a schema-constrained structured generation; on failure it falls back to
// free-text generation plus JSON extraction.
func (s *GeminiService) GenerateQuestions(ctx context.Context, transcript string, opts models.QuizOptions) ([]models.Question, error) {
	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer s.releaseRate()

	prompt := buildQuizPrompt(opts, transcript)

	resp, err := s.quizModel.GenerateContent(ctx, genai.Text(prompt))
	if err == nil {
		raw := strings.TrimSpace(extractText(resp))
		if raw != "" {
			if questions, nerr := NormalizeQuestions(json.RawMessage(raw), opts.QuestionType); nerr == nil {
				return questions, nil
			}
		}
		log.Println("structured quiz generation returned unusable output, falling back to free text")
	} else {
		log.Printf("structured quiz generation failed, falling back to free text: %v", err)
	}

	resp, err = s.quizFreeModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: model error", ErrGenerationFailed)
	}

	parsed := ParseModelOutput(extractText(resp))
	if parsed.Status != ParseOK {
		return nil, ErrGenerationFailed
	}
	return NormalizeQuestions(parsed.JSON, opts.QuestionType)
}

// GenerateSummary produces a structured summary via free-text generation plus
// JSON extraction. When no JSON can be recovered but the model produced any
// text at all, a degraded summary is salvaged instead of failing.
func (s *GeminiService) GenerateSummary(ctx context.Context, transcript, setting, locale string) (*models.SummaryResult, error) {
	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer s.releaseRate()

	prompt := buildSummaryPrompt(setting, locale, transcript)

	resp, err := s.summaryModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: model error", ErrGenerationFailed)
	}

	parsed := ParseModelOutput(extractText(resp))
	switch parsed.Status {
	case ParseOK:
		if result, nerr := NormalizeSummary(parsed.JSON); nerr == nil {
			return result, nil
		}
		return DegradedSummary(parsed.Text), nil
	case ParseDegraded:
		return DegradedSummary(parsed.Text), nil
	default:
		return nil, ErrGenerationFailed
	}
}

// GenerateFeedback rates a student's written explanation.
func (s *GeminiService) GenerateFeedback(ctx context.Context, explanation, audience, locale string) (*models.FeedbackResult, error) {
	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer s.releaseRate()

	prompt := buildFeedbackPrompt(audience, locale, explanation)

	resp, err := s.feedbackModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: model error", ErrGenerationFailed)
	}

	parsed := ParseModelOutput(extractText(resp))
	switch parsed.Status {
	case ParseOK:
		if result, nerr := NormalizeFeedback(parsed.JSON); nerr == nil {
			return result, nil
		}
		return DegradedFeedback(parsed.Text), nil
	case ParseDegraded:
		return DegradedFeedback(parsed.Text), nil
	default:
		return nil, ErrGenerationFailed
	}
}

// TranscribeAudio uses the Gemini File API to transcribe audio/video bytes.
func (s *GeminiService) TranscribeAudio(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	if len(data) == 0 {
		return "", fmt.Errorf("media payload is empty")
	}

	file, err := s.client.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{
		DisplayName: "media-upload",
		MIMEType:    mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload media to Gemini: %w", err)
	}

	// Ensure remote file is cleaned up
	defer s.client.DeleteFile(context.Background(), file.Name)

	// Wait until file is active
	for i := 0; i < 20; i++ {
		current, getErr := s.client.GetFile(ctx, file.Name)
		if getErr != nil {
			return "", fmt.Errorf("failed to get uploaded file status: %w", getErr)
		}

		if current.State == genai.FileStateActive {
			file = current
			break
		}
		if current.State == genai.FileStateFailed {
			return "", fmt.Errorf("Gemini failed to process uploaded media file")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	if file.State != genai.FileStateActive {
		return "", fmt.Errorf("media file did not become active in time")
	}

	prompt := "Transcribe the provided media verbatim. Return plain text only, without markdown, headers, or explanations."

	resp, err := s.transcribe.GenerateContent(ctx,
		genai.Text(prompt),
		genai.FileData{MIMEType: mimeType, URI: file.URI},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini transcription error: %w", err)
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", fmt.Errorf("Gemini returned empty transcription")
	}

	return text, nil
}

func quizResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question": {Type: genai.TypeString},
				"type": {
					Type: genai.TypeString,
					Enum: []string{
						models.QuestionMultipleChoice,
						models.QuestionTrueFalse,
						models.QuestionOpenEnded,
						models.QuestionFillBlank,
					},
				},
				"options":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"correct_answer": {Type: genai.TypeString},
				"explanation":    {Type: genai.TypeString},
			},
			Required: []string{"question", "type", "correct_answer", "explanation"},
		},
	}
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
