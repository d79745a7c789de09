package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Per-mode transcript ceilings, in characters. Excess content is truncated,
// never summarized.
const (
	MaxTranscriptQuiz    = 4000
	MaxTranscriptSummary = 8000
	MaxTranscriptExplain = 2000

	minContentChars = 10
)

// Transcriber converts audio/video bytes into text. GeminiService satisfies
// it; tests substitute fakes.
type Transcriber interface {
	TranscribeAudio(ctx context.Context, data []byte, mimeType string) (string, error)
}

type ExtractService struct {
	transcriber Transcriber
}

func NewExtractService(transcriber Transcriber) *ExtractService {
	return &ExtractService{transcriber: transcriber}
}

// Extract normalizes a routed upload into a transcript string. Text files are
// decoded directly; audio/video is sent to the hosted transcription service.
// Returns the transcript and the source kind ("text", "audio" or "video").
func (s *ExtractService) Extract(ctx context.Context, data []byte, filename string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt", ".md":
		text := strings.TrimSpace(decodeText(data))
		if utf8.RuneCountInString(text) < minContentChars {
			return "", "text", ErrContentTooShort
		}
		return normalizeExtractedText(text), "text", nil
	case ".mp3", ".wav", ".m4a", ".mp4", ".mov", ".avi":
		kind := "audio"
		if ext == ".mp4" || ext == ".mov" || ext == ".avi" {
			kind = "video"
		}
		transcript, err := s.transcriber.TranscribeAudio(ctx, data, mimeTypeForExt(ext))
		if err != nil {
			return "", kind, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
		}
		transcript = strings.TrimSpace(transcript)
		if utf8.RuneCountInString(transcript) < minContentChars {
			return "", kind, ErrTranscriptionFailed
		}
		return transcript, kind, nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrInvalidFileType, ext)
	}
}

// ClampTranscript truncates a transcript to the mode's character budget.
// The budget counts runes, not bytes, so multi-byte scripts keep the full
// allowance.
func ClampTranscript(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	seen := 0
	for i := range text {
		if seen == limit {
			return text[:i]
		}
		seen++
	}
	return text
}

// decodeText decodes bytes as UTF-8, falling back to Latin-1 when the payload
// is not valid UTF-8.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

func mimeTypeForExt(ext string) string {
	switch ext {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	default:
		return "application/octet-stream"
	}
}

func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	buf := bytes.Buffer{}

	emptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
