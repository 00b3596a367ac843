package analyses

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestNormalizeAnalysisFullPayload(t *testing.T) {
	record, err := NormalizeAnalysis(json.RawMessage(validAnalysisJSON))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if record.Summary != "a residential lease agreement" {
		t.Fatalf("summary = %q", record.Summary)
	}
	if len(record.KeyPoints) != 1 || record.KeyPoints[0] != "rent is 1200 per month" {
		t.Fatalf("key points = %+v", record.KeyPoints)
	}
	if len(record.Deadlines) != 1 {
		t.Fatalf("deadlines = %+v", record.Deadlines)
	}
	d := record.Deadlines[0]
	if d.Description != "first rent payment" || d.Date == nil {
		t.Fatalf("deadline = %+v", d)
	}
	want := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	if !d.Date.Equal(want) {
		t.Fatalf("date = %v", d.Date)
	}
	if record.Confidence != 0.92 {
		t.Fatalf("confidence = %v", record.Confidence)
	}
}

func TestNormalizeAnalysisMissingSummary(t *testing.T) {
	_, err := NormalizeAnalysis(json.RawMessage(`{"summary":"  "}`))
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("want ErrProvider, got %v", err)
	}
}

func TestNormalizeAnalysisMalformedJSON(t *testing.T) {
	_, err := NormalizeAnalysis(json.RawMessage(`not json at all`))
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("want ErrProvider, got %v", err)
	}
}

func TestNormalizeAnalysisNeverNilSlices(t *testing.T) {
	record, err := NormalizeAnalysis(json.RawMessage(`{"summary":"just a summary"}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if record.KeyPoints == nil || record.Deadlines == nil || record.Obligations == nil ||
		record.Risks == nil || record.NextSteps == nil || record.Checklist == nil {
		t.Fatalf("nil slice in %+v", record)
	}
}

func TestNormalizeAnalysisStringDeadlines(t *testing.T) {
	raw := `{"summary":"s","deadlines":["respond within 14 days", {"description":"hearing","date":"null"}]}`
	record, err := NormalizeAnalysis(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(record.Deadlines) != 2 {
		t.Fatalf("deadlines = %+v", record.Deadlines)
	}
	if record.Deadlines[0].Description != "respond within 14 days" || record.Deadlines[0].Date != nil {
		t.Fatalf("deadline 0 = %+v", record.Deadlines[0])
	}
	if record.Deadlines[1].Description != "hearing" || record.Deadlines[1].Date != nil {
		t.Fatalf("deadline 1 = %+v", record.Deadlines[1])
	}
}

func TestNormalizeAnalysisUnparseableDateKeepsDescription(t *testing.T) {
	raw := `{"summary":"s","deadlines":[{"description":"pay fee","date":"next Tuesday"}]}`
	record, err := NormalizeAnalysis(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(record.Deadlines) != 1 || record.Deadlines[0].Date != nil {
		t.Fatalf("deadlines = %+v", record.Deadlines)
	}
}

func TestNormalizeAnalysisClampsConfidence(t *testing.T) {
	record, err := NormalizeAnalysis(json.RawMessage(`{"summary":"s","confidence":3.5}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if record.Confidence != 1 {
		t.Fatalf("confidence = %v", record.Confidence)
	}
	record, err = NormalizeAnalysis(json.RawMessage(`{"summary":"s","confidence":-1}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if record.Confidence != 0 {
		t.Fatalf("confidence = %v", record.Confidence)
	}
}

func TestNormalizeAnalysisTrimsAndDropsEmpty(t *testing.T) {
	raw := `{"summary":" s ","important_points":["  a  ", "", "   "]}`
	record, err := NormalizeAnalysis(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if record.Summary != "s" {
		t.Fatalf("summary = %q", record.Summary)
	}
	if len(record.KeyPoints) != 1 || record.KeyPoints[0] != "a" {
		t.Fatalf("key points = %+v", record.KeyPoints)
	}
}
