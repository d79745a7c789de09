package services

import "errors"

// Sentinel errors for the generation pipeline. Handlers translate these into
// the JSON error envelope; raw provider error text never reaches clients.
var (
	ErrInvalidFileType     = errors.New("file type is not supported")
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrInlineTooLarge      = errors.New("file too large for inline upload, use a pre-signed upload URL")
	ErrContentTooShort     = errors.New("content is too short to generate from")
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrNetworkFetch        = errors.New("failed to fetch remote file")
	ErrLimitReached        = errors.New("daily generation limit reached")
)

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }
