package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"testing"
	"time"

	"docexplainer-backend/internal/extract"
	"docexplainer-backend/internal/history"
	"docexplainer-backend/internal/llm"
	"docexplainer-backend/internal/ratelimit"
	"docexplainer-backend/internal/sessions"
)

type fakeRecognizer struct {
	text string
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []byte) (string, error) {
	return f.text, nil
}

type fakeLLM struct {
	analyzeCalls int
	answerCalls  int
	analysisJSON string
	answer       string
	analyzeErr   error
	answerErr    error
	lastChat     llm.ChatInput
}

func (f *fakeLLM) AnalyzeDocument(_ context.Context, _ llm.AnalyzeInput) (json.RawMessage, error) {
	f.analyzeCalls++
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return json.RawMessage(f.analysisJSON), nil
}

func (f *fakeLLM) Answer(_ context.Context, input llm.ChatInput) (string, error) {
	f.answerCalls++
	f.lastChat = input
	if f.answerErr != nil {
		return "", f.answerErr
	}
	return f.answer, nil
}

const validAnalysisJSON = `{
	"summary": "a residential lease agreement",
	"important_points": ["rent is 1200 per month"],
	"deadlines": [{"description": "first rent payment", "date": "2025-04-01"}],
	"obligations": ["pay rent on the first of the month"],
	"risks": ["late fees after the fifth"],
	"recommended_next_steps": ["sign and return the lease"],
	"action_items": ["set up a rent standing order"],
	"confidence": 0.92
}`

func pngUpload(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newTestService(client llm.Client) (*Service, *history.MemoryRepo) {
	hist := history.NewMemoryRepo()
	svc := NewService(
		sessions.NewMemoryStore(0),
		extract.NewEngine(&fakeRecognizer{text: "Tenant agrees to pay rent of 1200 monthly."}, 32),
		client,
		nil,
		hist,
		ratelimit.New(10, 24*time.Hour),
		ratelimit.New(20, 24*time.Hour),
		20<<20,
	)
	return svc, hist
}
