package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"docexplainer-backend/internal/shared/metrics"
)

const recognizeConcurrency = 4

// Recognizer turns a page or document image into plain text.
type Recognizer interface {
	Recognize(ctx context.Context, img []byte) (string, error)
}

// Engine extracts plain text from PDFs and raster images. PDFs are read
// page by page from their text layer; pages whose text falls below the
// density threshold are re-run through the recognizer.
type Engine struct {
	recognizer Recognizer
	// threshold is the minimum number of alphanumeric runes a page's text
	// layer must contain to be trusted as-is.
	threshold int
}

// NewEngine builds an extraction engine. The recognizer may be nil, in
// which case documents that need recognition fail with
// ErrEngineUnavailable.
func NewEngine(recognizer Recognizer, threshold int) *Engine {
	if threshold <= 0 {
		threshold = 32
	}
	return &Engine{recognizer: recognizer, threshold: threshold}
}

// Extract pulls text from the document according to its media kind.
func (e *Engine) Extract(ctx context.Context, doc Document) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	switch doc.MediaKind {
	case MediaKindPDF:
		return e.extractPDF(ctx, doc)
	case MediaKindImage:
		return e.extractImage(ctx, doc)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, doc.MediaKind)
	}
}

func (e *Engine) extractPDF(ctx context.Context, doc Document) (Result, error) {
	pages, err := readPDFPages(doc.Data)
	if err != nil {
		return Result{}, err
	}
	if len(pages) == 0 {
		return Result{Provenance: ProvenanceDirect}, nil
	}

	texts := make([]string, len(pages))
	var fallback []int
	for i, pageText := range pages {
		trimmed := strings.TrimSpace(pageText)
		if alphanumericCount(trimmed) >= e.threshold {
			texts[i] = trimmed
			continue
		}
		fallback = append(fallback, i)
	}

	if len(fallback) > 0 {
		if err := e.recognizePDFPages(ctx, doc.Data, fallback, texts); err != nil {
			return Result{}, err
		}
		metrics.IncOCRFallback()
	}

	provenance := ProvenanceDirect
	if len(fallback) > 0 {
		provenance = ProvenanceRecognized
	}

	return Result{
		Text:            joinPages(texts),
		Provenance:      provenance,
		PageCount:       len(pages),
		RecognizedPages: len(fallback),
	}, nil
}

// recognizePDFPages runs the recognizer over the raw images of the given
// pages, filling texts in page order regardless of completion order.
func (e *Engine) recognizePDFPages(ctx context.Context, data []byte, pageIdx []int, texts []string) error {
	if e.recognizer == nil {
		return fmt.Errorf("%w: no recognizer configured", ErrEngineUnavailable)
	}

	imagesByPage, err := readPDFPageImages(data)
	if err != nil {
		return err
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(recognizeConcurrency)
	for _, idx := range pageIdx {
		idx := idx
		imgs := imagesByPage[idx+1]
		if len(imgs) == 0 {
			// Page has neither usable text nor embedded images.
			continue
		}
		eg.Go(func() error {
			var parts []string
			for _, img := range imgs {
				text, err := e.recognizer.Recognize(gctx, img)
				if err != nil {
					return fmt.Errorf("recognize page %d: %w", idx+1, err)
				}
				if text = strings.TrimSpace(text); text != "" {
					parts = append(parts, text)
				}
			}
			texts[idx] = strings.Join(parts, "\n")
			return nil
		})
	}
	return eg.Wait()
}

func (e *Engine) extractImage(ctx context.Context, doc Document) (Result, error) {
	if err := validateRaster(doc.Data); err != nil {
		return Result{}, err
	}
	if e.recognizer == nil {
		return Result{}, fmt.Errorf("%w: no recognizer configured", ErrEngineUnavailable)
	}
	text, err := e.recognizer.Recognize(ctx, doc.Data)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Text:            strings.TrimSpace(text),
		Provenance:      ProvenanceRecognized,
		PageCount:       1,
		RecognizedPages: 1,
	}, nil
}

func alphanumericCount(s string) int {
	count := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			count++
		}
	}
	return count
}

func joinPages(texts []string) string {
	var nonEmpty []string
	for _, t := range texts {
		if t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}
