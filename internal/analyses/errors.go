package analyses

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidInput covers missing files, empty questions and oversized
	// uploads.
	ErrInvalidInput = errors.New("invalid input")
	// ErrProvider covers failed or malformed responses from the analysis
	// provider.
	ErrProvider = errors.New("analysis provider error")
)

// QuotaExceededError reports a denied admission and how long the caller
// must wait for a slot to open.
type QuotaExceededError struct {
	Operation  string
	RetryAfter time.Duration
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s quota exceeded, retry in %s", e.Operation, e.RetryAfter)
}

const (
	ErrorCodeValidation        = "validation_error"
	ErrorCodeQuotaExceeded     = "quota_exceeded"
	ErrorCodeUnsupportedFormat = "unsupported_format"
	ErrorCodeCorruptDocument   = "corrupt_document"
	ErrorCodeRecognition       = "recognition_unavailable"
	ErrorCodeProvider          = "analysis_provider_error"
	ErrorCodeSessionNotFound   = "session_not_found"
	ErrorCodeInternal          = "internal_error"
)

// Warning codes attached to otherwise successful analyses.
const (
	WarningStorageUnavailable = "storage_unavailable"
)
