package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

var extKinds = map[string]MediaKind{
	".pdf":  MediaKindPDF,
	".png":  MediaKindImage,
	".jpg":  MediaKindImage,
	".jpeg": MediaKindImage,
	".tiff": MediaKindImage,
}

// DetectMediaKind maps a file name to a media kind using the extension
// allowlist. Anything else is rejected with ErrUnsupportedFormat.
func DetectMediaKind(fileName string) (MediaKind, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	kind, ok := extKinds[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return kind, nil
}

// SupportedExtensions lists the accepted file extensions, for error details.
func SupportedExtensions() []string {
	return []string{".pdf", ".png", ".jpg", ".jpeg", ".tiff"}
}
