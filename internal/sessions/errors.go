package sessions

import "errors"

// ErrNotFound is returned for unknown or already-reset session IDs.
var ErrNotFound = errors.New("session not found")
