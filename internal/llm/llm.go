package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts LLM providers for document analysis and follow-up
// questions.
type Client interface {
	// AnalyzeDocument returns the structured analysis as raw JSON. The
	// payload is validated and normalized by the caller.
	AnalyzeDocument(ctx context.Context, input AnalyzeInput) (json.RawMessage, error)
	// Answer responds to a follow-up question grounded in the document
	// and the prior conversation.
	Answer(ctx context.Context, input ChatInput) (string, error)
}

// AnalyzeInput captures the inputs needed for a document analysis.
type AnalyzeInput struct {
	DocumentText string
	FileName     string
}

// Turn is one prior question/answer exchange, replayed for context.
type Turn struct {
	Question string
	Answer   string
}

// ChatInput captures the inputs for answering a follow-up question.
type ChatInput struct {
	DocumentText string
	Summary      string
	History      []Turn
	Question     string
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// AnalyzeDocument returns ErrNotImplemented.
func (PlaceholderClient) AnalyzeDocument(ctx context.Context, input AnalyzeInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotImplemented
}

// Answer returns ErrNotImplemented.
func (PlaceholderClient) Answer(ctx context.Context, input ChatInput) (string, error) {
	_ = ctx
	_ = input
	return "", ErrNotImplemented
}
