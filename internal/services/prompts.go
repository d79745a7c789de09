package services

import (
	"fmt"
	"strings"

	"quizforge-backend/internal/models"
)

// Prompt templates for every generation mode live here so the quiz, summary
// and feedback paths cannot drift apart. All builders are pure functions from
// options to prompt string.

func buildQuizPrompt(opts models.QuizOptions, transcript string) string {
	var b strings.Builder

	b.WriteString("You are an expert educational assessor. Generate quiz questions based on the following content.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON array. No preamble, no markdown, no backticks.\n\n")

	b.WriteString(fmt.Sprintf("Generate exactly %d questions of type %q.\n", opts.QuestionCount, opts.QuestionType))
	b.WriteString(fmt.Sprintf("Difficulty: %s\n", opts.Difficulty))

	switch opts.Difficulty {
	case "easy":
		b.WriteString("Easy = direct recall from text.\n")
	case "medium":
		b.WriteString("Medium = application of concepts.\n")
	case "hard":
		b.WriteString("Hard = analysis, synthesis, or inference beyond what is explicitly stated.\n")
	}

	b.WriteString(`
JSON schema per question:
{"question": "string", "type": "multiple-choice"|"true-false"|"open-ended"|"fill-blank", "options": ["string"], "correct_answer": string or int, "explanation": "string"}

For multiple-choice: exactly 4 options and correct_answer as a zero-based index.
For true-false: correct_answer must be "True" or "False"; omit options.
For open-ended and fill-blank: correct_answer is the expected answer text; omit options.
`)

	if opts.Locale != "" && opts.Locale != "en" {
		b.WriteString(fmt.Sprintf("\nLanguage: Write all questions, options and explanations in %s.\n", opts.Locale))
	}

	b.WriteString("\n---CONTENT---\n")
	b.WriteString(transcript)
	b.WriteString("\n---END---\n")

	return b.String()
}

func buildSummaryPrompt(setting, locale, transcript string) string {
	var b strings.Builder

	b.WriteString("You are an expert educational content analyst. Summarize the following study material.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON object. No preamble, no markdown, no backticks.\n\n")

	switch setting {
	case "brief":
		b.WriteString("Style: A short overview of 2-3 sentences, 3 key points, 3 concepts.\n")
	case "in-depth":
		b.WriteString("Style: A thorough overview of 2-3 paragraphs, 6-8 key points, 5-8 concepts.\n")
	case "key-points":
		b.WriteString("Style: A one-sentence overview, then 8-10 key points carrying the substance, 5 concepts.\n")
	default:
		b.WriteString("Style: A concise overview of one paragraph, 5 key points, 5 concepts.\n")
	}

	b.WriteString(`
JSON schema:
{"summary": "string", "keyPoints": ["string"], "concepts": ["string"]}
`)

	if locale != "" && locale != "en" {
		b.WriteString(fmt.Sprintf("\nLanguage: Respond entirely in %s.\n", locale))
	}

	b.WriteString("\n---CONTENT---\n")
	b.WriteString(transcript)
	b.WriteString("\n---END---\n")

	return b.String()
}

func buildFeedbackPrompt(audience, locale, explanation string) string {
	var b strings.Builder

	b.WriteString("You are a patient tutor using the Feynman technique. A student wrote the explanation below; assess how well they understand the topic.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON object. No preamble, no markdown, no backticks.\n\n")

	if audience != "" {
		b.WriteString(fmt.Sprintf("The student is explaining to a %s audience; judge clarity at that level.\n", audience))
	}

	b.WriteString(`
JSON schema:
{"rating": 1-5, "feedback": "string", "improvements": ["string"]}

rating: 5 = clear, complete and correct; 1 = fundamentally confused.
feedback: 2-4 encouraging sentences naming what works and what does not.
improvements: 2-4 concrete suggestions.
`)

	if locale != "" && locale != "en" {
		b.WriteString(fmt.Sprintf("\nLanguage: Respond entirely in %s.\n", locale))
	}

	b.WriteString("\n---EXPLANATION---\n")
	b.WriteString(explanation)
	b.WriteString("\n---END---\n")

	return b.String()
}
