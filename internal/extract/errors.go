package extract

import "errors"

var (
	// ErrUnsupportedFormat is returned for file types outside the allowlist.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrCorruptInput is returned when a document cannot be parsed as its
	// declared format.
	ErrCorruptInput = errors.New("corrupt document")
	// ErrEngineUnavailable is returned when recognition is required but no
	// recognition engine is configured or the engine cannot run.
	ErrEngineUnavailable = errors.New("recognition engine unavailable")
)
