package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeRecognizer struct {
	text  string
	err   error
	calls int
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDetectMediaKind(t *testing.T) {
	cases := []struct {
		name    string
		want    MediaKind
		wantErr bool
	}{
		{"contract.pdf", MediaKindPDF, false},
		{"scan.PNG", MediaKindImage, false},
		{"photo.jpeg", MediaKindImage, false},
		{"page.tiff", MediaKindImage, false},
		{"letter.docx", "", true},
		{"noext", "", true},
	}
	for _, tc := range cases {
		kind, err := DetectMediaKind(tc.name)
		if tc.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Fatalf("%s: want ErrUnsupportedFormat, got %v", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if kind != tc.want {
			t.Fatalf("%s: kind = %q, want %q", tc.name, kind, tc.want)
		}
	}
}

func TestExtractImageRecognized(t *testing.T) {
	engine := NewEngine(&fakeRecognizer{text: "  Hello scanned world  "}, 32)
	res, err := engine.Extract(context.Background(), Document{
		FileName:  "scan.png",
		MediaKind: MediaKindImage,
		Data:      pngBytes(t),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "Hello scanned world" {
		t.Fatalf("text = %q", res.Text)
	}
	if res.Provenance != ProvenanceRecognized {
		t.Fatalf("provenance = %q", res.Provenance)
	}
	if res.PageCount != 1 || res.RecognizedPages != 1 {
		t.Fatalf("pages = %d/%d", res.PageCount, res.RecognizedPages)
	}
}

func TestExtractImageCorrupt(t *testing.T) {
	engine := NewEngine(&fakeRecognizer{text: "irrelevant"}, 32)
	_, err := engine.Extract(context.Background(), Document{
		FileName:  "scan.png",
		MediaKind: MediaKindImage,
		Data:      []byte("not an image"),
	})
	if !errors.Is(err, ErrCorruptInput) {
		t.Fatalf("want ErrCorruptInput, got %v", err)
	}
}

func TestExtractImageNoRecognizer(t *testing.T) {
	engine := NewEngine(nil, 32)
	_, err := engine.Extract(context.Background(), Document{
		FileName:  "scan.png",
		MediaKind: MediaKindImage,
		Data:      pngBytes(t),
	})
	if !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("want ErrEngineUnavailable, got %v", err)
	}
}

func TestExtractTextPDFSkipsRecognition(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "plain_text.pdf"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	rec := &fakeRecognizer{text: "should never be used"}
	engine := NewEngine(rec, 32)
	res, err := engine.Extract(context.Background(), Document{
		FileName:  "lease.pdf",
		MediaKind: MediaKindPDF,
		Data:      data,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Provenance != ProvenanceDirect {
		t.Fatalf("provenance = %q, want %q", res.Provenance, ProvenanceDirect)
	}
	if res.PageCount != 1 || res.RecognizedPages != 0 {
		t.Fatalf("pages = %d/%d", res.PageCount, res.RecognizedPages)
	}
	if !strings.Contains(res.Text, "1450") || !strings.Contains(res.Text, "lease") {
		t.Fatalf("text = %q", res.Text)
	}
	if rec.calls != 0 {
		t.Fatalf("recognizer called %d times for a text-bearing page", rec.calls)
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	engine := NewEngine(&fakeRecognizer{}, 32)
	_, err := engine.Extract(context.Background(), Document{
		FileName:  "broken.pdf",
		MediaKind: MediaKindPDF,
		Data:      []byte("definitely not a pdf"),
	})
	if !errors.Is(err, ErrCorruptInput) {
		t.Fatalf("want ErrCorruptInput, got %v", err)
	}
}

func TestExtractUnknownKind(t *testing.T) {
	engine := NewEngine(&fakeRecognizer{}, 32)
	_, err := engine.Extract(context.Background(), Document{MediaKind: "spreadsheet"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("want ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine := NewEngine(&fakeRecognizer{}, 32)
	_, err := engine.Extract(ctx, Document{MediaKind: MediaKindImage, Data: pngBytes(t)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestAlphanumericCount(t *testing.T) {
	if got := alphanumericCount("ab 12 --"); got != 4 {
		t.Fatalf("count = %d", got)
	}
	if got := alphanumericCount("   \n\t"); got != 0 {
		t.Fatalf("count = %d", got)
	}
}

func TestJoinPagesSkipsEmpty(t *testing.T) {
	got := joinPages([]string{"one", "", "three"})
	if got != "one\n\nthree" {
		t.Fatalf("joined = %q", got)
	}
}
