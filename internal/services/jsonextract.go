package services

import (
	"encoding/json"
	"strings"
)

// ParseStatus tags the outcome of extracting JSON from free-text model output.
type ParseStatus int

const (
	// ParseOK: a valid top-level JSON object or array was found.
	ParseOK ParseStatus = iota
	// ParseDegraded: no parseable JSON, but the model produced text that a
	// caller can salvage into a partial result.
	ParseDegraded
	// ParseUnparseable: the model produced nothing usable.
	ParseUnparseable
)

type ParseResult struct {
	Status ParseStatus
	JSON   json.RawMessage // valid when Status == ParseOK
	Text   string          // fence-stripped raw text, for salvage
}

// ParseModelOutput extracts the first top-level JSON object or array from
// free-text model output: code fences are stripped, then brackets are matched
// with string awareness. There is no guessing; callers decide how to salvage
// a Degraded result.
func ParseModelOutput(raw string) ParseResult {
	text := trimOuterFence(raw)
	if text == "" {
		return ParseResult{Status: ParseUnparseable}
	}

	if candidate, ok := firstBalancedJSON(text); ok && json.Valid([]byte(candidate)) {
		return ParseResult{Status: ParseOK, JSON: json.RawMessage(candidate), Text: text}
	}

	// No balanced JSON yet, so removing stray mid-answer fences cannot touch
	// the contents of a JSON string value.
	stripped := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(text, "```json", ""), "```", ""))
	if stripped == "" {
		return ParseResult{Status: ParseUnparseable}
	}
	if candidate, ok := firstBalancedJSON(stripped); ok && json.Valid([]byte(candidate)) {
		return ParseResult{Status: ParseOK, JSON: json.RawMessage(candidate), Text: stripped}
	}

	return ParseResult{Status: ParseDegraded, Text: stripped}
}

// trimOuterFence removes a code fence wrapping the whole answer; fences
// embedded deeper in the text are left for ParseModelOutput to handle.
func trimOuterFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// firstBalancedJSON scans for the first '{' or '[' and returns the substring
// up to its balanced closing bracket, skipping brackets inside JSON strings.
func firstBalancedJSON(s string) (string, bool) {
	start := -1
	var open, close byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			start, open, close = i, '{', '}'
			break
		}
		if s[i] == '[' {
			start, open, close = i, '[', ']'
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
