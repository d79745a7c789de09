package services

import (
	"encoding/json"
	"strconv"
	"strings"

	"quizforge-backend/internal/models"
)

// Response normalization: structural repair of model output before it leaves
// the system. The canonical correctAnswer representation is per question kind:
// a zero-based index for multiple-choice, "True"/"False" for true-false, free
// text otherwise. Upstream letter or text answers are converted here so
// scoring sees one representation per kind.

type looseQuestion struct {
	Question      string          `json:"question"`
	Prompt        string          `json:"prompt"`
	Type          string          `json:"type"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	CorrectSnake  json.RawMessage `json:"correct_answer"`
	CorrectIndex  *int            `json:"correct_index"`
	Explanation   string          `json:"explanation"`
}

// NormalizeQuestions validates and repairs a raw model question array.
// Questions missing a prompt are dropped; an empty result is GenerationFailed.
func NormalizeQuestions(data json.RawMessage, requestedType string) ([]models.Question, error) {
	var loose []looseQuestion
	if err := json.Unmarshal(data, &loose); err != nil {
		// Some models wrap the array in {"questions": [...]}
		var wrapper struct {
			Questions []looseQuestion `json:"questions"`
		}
		if err2 := json.Unmarshal(data, &wrapper); err2 != nil || len(wrapper.Questions) == 0 {
			return nil, ErrGenerationFailed
		}
		loose = wrapper.Questions
	}

	valid := make([]models.Question, 0, len(loose))
	for _, lq := range loose {
		prompt := lq.Question
		if prompt == "" {
			prompt = lq.Prompt
		}
		if prompt == "" {
			continue
		}

		kind := normalizeKind(lq.Type, requestedType)
		q := models.Question{
			Question:    prompt,
			Type:        kind,
			Explanation: lq.Explanation,
		}

		answer := lq.CorrectAnswer
		if len(answer) == 0 {
			answer = lq.CorrectSnake
		}

		switch kind {
		case models.QuestionMultipleChoice:
			if len(lq.Options) == 0 {
				continue
			}
			q.Options = lq.Options
			q.CorrectAnswer = resolveOptionIndex(answer, lq.CorrectIndex, lq.Options)
		case models.QuestionTrueFalse:
			// options are implied for true/false; drop whatever came back
			q.CorrectAnswer = resolveTrueFalse(answer, lq.CorrectIndex)
		default:
			q.CorrectAnswer = rawToString(answer)
		}

		valid = append(valid, q)
	}

	if len(valid) == 0 {
		return nil, ErrGenerationFailed
	}
	return valid, nil
}

// NormalizeSummary guarantees the summary shape: all three fields present,
// empty slices substituted when the model omits them.
func NormalizeSummary(data json.RawMessage) (*models.SummaryResult, error) {
	var res models.SummaryResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, ErrGenerationFailed
	}
	if res.Summary == "" && len(res.KeyPoints) == 0 {
		return nil, ErrGenerationFailed
	}
	if res.KeyPoints == nil {
		res.KeyPoints = []string{}
	}
	if res.Concepts == nil {
		res.Concepts = []string{}
	}
	return &res, nil
}

// DegradedSummary salvages a summary from raw model text when no JSON could
// be extracted: truncated overview, lines as key points.
func DegradedSummary(text string) *models.SummaryResult {
	overview := text
	if len(overview) > 600 {
		overview = ClampTranscript(overview, 600)
	}

	keyPoints := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "-*• ")
		if line == "" {
			continue
		}
		keyPoints = append(keyPoints, line)
		if len(keyPoints) == 5 {
			break
		}
	}

	return &models.SummaryResult{
		Summary:   strings.TrimSpace(overview),
		KeyPoints: keyPoints,
		Concepts:  []string{},
	}
}

func NormalizeFeedback(data json.RawMessage) (*models.FeedbackResult, error) {
	var res models.FeedbackResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, ErrGenerationFailed
	}
	if res.Feedback == "" {
		return nil, ErrGenerationFailed
	}
	if res.Rating < 1 || res.Rating > 5 {
		res.Rating = 3
	}
	if res.Improvements == nil {
		res.Improvements = []string{}
	}
	return &res, nil
}

func DegradedFeedback(text string) *models.FeedbackResult {
	return &models.FeedbackResult{
		Rating:       3,
		Feedback:     strings.TrimSpace(ClampTranscript(text, 600)),
		Improvements: []string{},
	}
}

func normalizeKind(kind, requested string) string {
	k := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(kind), "_", "-"))
	switch k {
	case models.QuestionMultipleChoice, models.QuestionTrueFalse,
		models.QuestionOpenEnded, models.QuestionFillBlank:
		return k
	case "truefalse", "true/false":
		return models.QuestionTrueFalse
	case "mcq", "multiplechoice":
		return models.QuestionMultipleChoice
	}
	if requested != "" {
		return requested
	}
	return models.QuestionMultipleChoice
}

// resolveOptionIndex maps whatever the model returned (index, letter, or the
// option text itself) to a zero-based index into options.
func resolveOptionIndex(answer json.RawMessage, idx *int, options []string) int {
	if idx != nil && *idx >= 0 && *idx < len(options) {
		return *idx
	}

	var n int
	if json.Unmarshal(answer, &n) == nil {
		if n >= 0 && n < len(options) {
			return n
		}
		return 0
	}

	s := rawToString(answer)
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	// Single letter "A".."Z", with or without a trailing ")" or "."
	letter := strings.TrimRight(strings.ToUpper(s), ").")
	if len(letter) == 1 && letter[0] >= 'A' && letter[0] <= 'Z' {
		if i := int(letter[0] - 'A'); i < len(options) {
			return i
		}
	}

	// Numeric string
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(options) {
		return n
	}

	// Match against option text
	for i, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), s) {
			return i
		}
	}
	return 0
}

func resolveTrueFalse(answer json.RawMessage, idx *int) string {
	var b bool
	if json.Unmarshal(answer, &b) == nil {
		if b {
			return "True"
		}
		return "False"
	}

	s := strings.ToLower(strings.TrimSpace(rawToString(answer)))
	switch {
	case strings.HasPrefix(s, "t"):
		return "True"
	case strings.HasPrefix(s, "f"):
		return "False"
	}

	var n int
	if json.Unmarshal(answer, &n) == nil {
		if n == 1 {
			return "False"
		}
		return "True"
	}
	if idx != nil && *idx == 1 {
		return "False"
	}
	return "True"
}

func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}
