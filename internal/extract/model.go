package extract

// MediaKind classifies an uploaded document by its container format.
type MediaKind string

const (
	MediaKindPDF   MediaKind = "pdf"
	MediaKindImage MediaKind = "image"
)

// Provenance records how the text of a document was obtained.
type Provenance string

const (
	// ProvenanceDirect means the text was read from the document's own
	// text layer.
	ProvenanceDirect Provenance = "direct"
	// ProvenanceRecognized means at least part of the text came from
	// optical recognition of page images.
	ProvenanceRecognized Provenance = "recognized"
)

// Document is an in-memory upload handed to the extraction engine.
type Document struct {
	FileName  string
	MediaKind MediaKind
	Data      []byte
}

// Result is the outcome of a successful extraction.
type Result struct {
	Text            string
	Provenance      Provenance
	PageCount       int
	RecognizedPages int
}
