package services

import (
	"encoding/json"
	"testing"

	"quizforge-backend/internal/models"
)

func TestNormalizeQuestions_LetterAnswerBecomesIndex(t *testing.T) {
	data := json.RawMessage(`[{
		"question": "Which gas do plants absorb?",
		"type": "multiple-choice",
		"options": ["Oxygen", "Carbon dioxide", "Nitrogen", "Helium"],
		"correctAnswer": "B",
		"explanation": "Photosynthesis consumes CO2."
	}]`)

	questions, err := NormalizeQuestions(data, models.QuestionMultipleChoice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if got := questions[0].CorrectAnswer; got != 1 {
		t.Fatalf("expected index 1 for answer B, got %v", got)
	}
}

func TestNormalizeQuestions_OptionTextAnswer(t *testing.T) {
	data := json.RawMessage(`[{
		"question": "Capital of France?",
		"type": "multiple-choice",
		"options": ["London", "Paris", "Berlin", "Rome"],
		"correctAnswer": "Paris"
	}]`)

	questions, err := NormalizeQuestions(data, models.QuestionMultipleChoice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := questions[0].CorrectAnswer; got != 1 {
		t.Fatalf("expected index 1 for option-text answer, got %v", got)
	}
}

func TestNormalizeQuestions_NumericStringAnswer(t *testing.T) {
	data := json.RawMessage(`[{
		"question": "Pick one",
		"type": "multiple-choice",
		"options": ["a", "b", "c"],
		"correctAnswer": "2"
	}]`)

	questions, err := NormalizeQuestions(data, models.QuestionMultipleChoice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := questions[0].CorrectAnswer; got != 2 {
		t.Fatalf("expected index 2, got %v", got)
	}
}

func TestNormalizeQuestions_TrueFalseCanonical(t *testing.T) {
	cases := []struct {
		answer string
		want   string
	}{
		{`true`, "True"},
		{`false`, "False"},
		{`"TRUE"`, "True"},
		{`"f"`, "False"},
		{`"True"`, "True"},
	}

	for _, tc := range cases {
		data := json.RawMessage(`[{
			"question": "Water boils at 100C at sea level.",
			"type": "true-false",
			"options": ["True", "False"],
			"correctAnswer": ` + tc.answer + `
		}]`)

		questions, err := NormalizeQuestions(data, models.QuestionTrueFalse)
		if err != nil {
			t.Fatalf("answer %s: unexpected error: %v", tc.answer, err)
		}
		if got := questions[0].CorrectAnswer; got != tc.want {
			t.Errorf("answer %s: got %v, want %q", tc.answer, got, tc.want)
		}
		if questions[0].Options != nil {
			t.Errorf("answer %s: true-false questions must not carry options", tc.answer)
		}
	}
}

func TestNormalizeQuestions_UnderscoreKindAlias(t *testing.T) {
	data := json.RawMessage(`[{
		"question": "The earth is flat.",
		"type": "true_false",
		"correct_answer": "False"
	}]`)

	questions, err := NormalizeQuestions(data, models.QuestionTrueFalse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if questions[0].Type != models.QuestionTrueFalse {
		t.Fatalf("expected true-false, got %q", questions[0].Type)
	}
	if questions[0].CorrectAnswer != "False" {
		t.Fatalf("expected False, got %v", questions[0].CorrectAnswer)
	}
}

func TestNormalizeQuestions_WrappedArray(t *testing.T) {
	data := json.RawMessage(`{"questions": [{
		"question": "Define entropy.",
		"type": "open-ended",
		"correctAnswer": "A measure of disorder in a system."
	}]}`)

	questions, err := NormalizeQuestions(data, models.QuestionOpenEnded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if _, ok := questions[0].CorrectAnswer.(string); !ok {
		t.Fatalf("open-ended answer must stay free text, got %T", questions[0].CorrectAnswer)
	}
}

func TestNormalizeQuestions_DropsPromptless(t *testing.T) {
	data := json.RawMessage(`[
		{"type": "multiple-choice", "options": ["a", "b"], "correctAnswer": 0},
		{"question": "Kept?", "type": "multiple-choice", "options": ["yes", "no"], "correctAnswer": 0}
	]`)

	questions, err := NormalizeQuestions(data, models.QuestionMultipleChoice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 1 || questions[0].Question != "Kept?" {
		t.Fatalf("expected only the question with a prompt, got %+v", questions)
	}
}

func TestNormalizeQuestions_EmptyFails(t *testing.T) {
	if _, err := NormalizeQuestions(json.RawMessage(`[]`), ""); err == nil {
		t.Fatalf("expected error for empty array")
	}
	if _, err := NormalizeQuestions(json.RawMessage(`"not an array"`), ""); err == nil {
		t.Fatalf("expected error for non-array payload")
	}
}

func TestNormalizeSummary_FillsDefaults(t *testing.T) {
	res, err := NormalizeSummary(json.RawMessage(`{"summary": "Cells divide by mitosis."}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.KeyPoints == nil || res.Concepts == nil {
		t.Fatalf("keyPoints and concepts must never be nil")
	}
}

func TestDegradedSummary_SalvagesLines(t *testing.T) {
	text := "- Mitosis produces two cells\n- Meiosis produces four\n\n- Both start from one cell"
	res := DegradedSummary(text)
	if res.Summary == "" {
		t.Fatalf("expected a salvaged overview")
	}
	if len(res.KeyPoints) != 3 {
		t.Fatalf("expected 3 key points, got %d", len(res.KeyPoints))
	}
	if res.KeyPoints[0] != "Mitosis produces two cells" {
		t.Fatalf("expected bullet prefix stripped, got %q", res.KeyPoints[0])
	}
}

func TestNormalizeFeedback_RatingClamp(t *testing.T) {
	res, err := NormalizeFeedback(json.RawMessage(`{"feedback": "Solid explanation.", "rating": 11}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rating != 3 {
		t.Fatalf("expected out-of-range rating clamped to 3, got %d", res.Rating)
	}

	res, err = NormalizeFeedback(json.RawMessage(`{"feedback": "Good.", "rating": 5}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rating != 5 {
		t.Fatalf("expected valid rating preserved, got %d", res.Rating)
	}
}

func TestNormalizeFeedback_RequiresFeedbackText(t *testing.T) {
	if _, err := NormalizeFeedback(json.RawMessage(`{"rating": 4}`)); err == nil {
		t.Fatalf("expected error when feedback text is missing")
	}
}
