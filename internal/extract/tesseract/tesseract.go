package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"docexplainer-backend/internal/extract"
)

// Recognizer implements extract.Recognizer using the gosseract client.
// A fresh client is created per call; gosseract clients are not safe for
// concurrent use.
type Recognizer struct {
	clientFactory func() *gosseract.Client
	languages     []string
}

// New constructs a Tesseract-backed recognizer for the given traineddata
// languages, e.g. ["eng", "deu"].
func New(languages []string) *Recognizer {
	return &Recognizer{
		clientFactory: gosseract.NewClient,
		languages:     languages,
	}
}

// Recognize runs recognition on a single image. If the combined language
// set cannot be loaded (a traineddata file may be missing), each language
// is retried individually and the first success wins.
func (r *Recognizer) Recognize(ctx context.Context, img []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	text, err := r.recognizeWithLanguages(img, r.languages)
	if err == nil {
		return text, nil
	}
	if len(r.languages) < 2 {
		return "", fmt.Errorf("%w: %v", extract.ErrEngineUnavailable, err)
	}

	var lastErr error = err
	for _, lang := range r.languages {
		text, err := r.recognizeWithLanguages(img, []string{lang})
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("%w: %v", extract.ErrEngineUnavailable, lastErr)
}

func (r *Recognizer) recognizeWithLanguages(img []byte, languages []string) (string, error) {
	c := r.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(languages) > 0 {
		if err := c.SetLanguage(languages...); err != nil {
			return "", fmt.Errorf("set languages %v: %w", languages, err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

var _ extract.Recognizer = (*Recognizer)(nil)
