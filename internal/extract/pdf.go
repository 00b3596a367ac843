package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// readPDFPages returns the text layer of each page, in page order.
func readPDFPages(data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptInput, err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A page with a broken text layer is treated as scanned and
			// left for the recognizer.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// readPDFPageImages extracts the raw embedded images of every page, keyed
// by 1-based page number. Scanned documents typically carry one full-page
// image per page.
func readPDFPageImages(data []byte) (map[int][][]byte, error) {
	cfg := pdfmodel.NewDefaultConfiguration()
	cfg.ValidationMode = pdfmodel.ValidationRelaxed

	imageMaps, err := pdfapi.ExtractImagesRaw(bytes.NewReader(data), nil, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: extract page images: %v", ErrCorruptInput, err)
	}

	byPage := make(map[int][][]byte)
	for _, pageImages := range imageMaps {
		for _, img := range pageImages {
			raw, err := io.ReadAll(img)
			if err != nil {
				return nil, fmt.Errorf("read page %d image: %w", img.PageNr, err)
			}
			byPage[img.PageNr] = append(byPage[img.PageNr], raw)
		}
	}
	return byPage, nil
}
