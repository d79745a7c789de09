package models

// Question kinds. The correct answer representation is canonical per kind:
// a zero-based option index for multiple-choice, "True"/"False" for
// true-false, and free text for open-ended and fill-blank.
const (
	QuestionMultipleChoice = "multiple-choice"
	QuestionTrueFalse      = "true-false"
	QuestionOpenEnded      = "open-ended"
	QuestionFillBlank      = "fill-blank"
)

type Question struct {
	Question      string      `json:"question"`
	Type          string      `json:"type"`
	Options       []string    `json:"options,omitempty"`
	CorrectAnswer interface{} `json:"correctAnswer"`
	Explanation   string      `json:"explanation"`
}

type QuizOptions struct {
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"questionCount"`
	QuestionType  string `json:"questionType"`
	Locale        string `json:"locale"`
}

type GenerateQuestionsRequest struct {
	Text string `json:"text"`
	QuizOptions
}

type MediaToQuestionsRequest struct {
	FileURL string `json:"fileUrl"`
	QuizOptions
}

type YouTubeToQuestionsRequest struct {
	YouTubeURL string `json:"youtubeUrl"`
	QuizOptions
}

type SummarizeRequest struct {
	Text    string `json:"text"`
	UserID  string `json:"userId"`
	Setting string `json:"setting"` // "brief" | "in-depth" | "key-points"
	Locale  string `json:"locale"`
}

type SummaryResult struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
	Concepts  []string `json:"concepts"`
}

type ExplainFeedbackRequest struct {
	Explanation string `json:"explanation"`
	UserID      string `json:"userId"`
	Audience    string `json:"audience"`
	Locale      string `json:"locale"`
}

type FeedbackResult struct {
	Rating       int      `json:"rating"` // 1-5
	Feedback     string   `json:"feedback"`
	Improvements []string `json:"improvements"`
}

type UploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

type SignedUpload struct {
	URL       string            `json:"url"`
	Fields    map[string]string `json:"fields"`
	Key       string            `json:"key"`
	PublicURL string            `json:"publicUrl"`
}

type TranslateRequest struct {
	Text         string `json:"text"`
	TargetLocale string `json:"targetLocale"`
}
