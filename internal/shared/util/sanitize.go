package util

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrBadFileName marks an upload name that cannot be reduced to a safe
// path element.
var ErrBadFileName = errors.New("unusable file name")

const maxFileNameRunes = 128

// SanitizeFileName reduces an uploaded file name to a single safe path
// element: traversal patterns are rejected outright, separators become
// hyphens, control characters are dropped, and overlong names are
// truncated keeping the extension.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrBadFileName
	}

	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r < 0x20 || r == 0x7f || r == 0x00:
		case r == '/' || r == '\\' || r == ':':
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}

	s := strings.Trim(b.String(), ". ")
	if s == "" {
		return "", ErrBadFileName
	}
	return truncateFileName(s), nil
}

func truncateFileName(s string) string {
	runes := []rune(s)
	if len(runes) <= maxFileNameRunes {
		return s
	}
	ext := filepath.Ext(s)
	if len(ext) > 16 {
		ext = ""
	}
	keep := maxFileNameRunes - len([]rune(ext))
	return string(runes[:keep]) + ext
}
