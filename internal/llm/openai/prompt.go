package openai

import (
	"fmt"
	"strings"

	"docexplainer-backend/internal/llm"
)

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const (
	systemPromptAnalysis = "You are a document analysis engine. Respond with JSON only. No markdown. Never omit keys. Output must match the schema exactly."
	systemPromptChat     = "You answer questions about a document a user uploaded. Answer only from the document and analysis provided. If the document does not contain the answer, say so plainly. Keep answers short and concrete."

	analysisSchema = `Analyze the document and return a JSON object with exactly these keys:
{
  "summary": "plain-language summary of what this document is and what it means for the reader",
  "important_points": ["the facts the reader must not miss"],
  "deadlines": [{"description": "what is due", "date": "YYYY-MM-DD or null if not stated"}],
  "obligations": ["what the reader is required to do"],
  "risks": ["consequences of ignoring this document"],
  "recommended_next_steps": ["what the reader should do next, in order"],
  "action_items": ["short imperative checklist items"],
  "confidence": 0.0
}
"confidence" is your confidence in the analysis between 0 and 1. Use empty arrays when a section does not apply. Do not invent dates or obligations that are not in the document.`
)

// BuildAnalysisPrompt creates the chat messages for a document analysis
// request.
func BuildAnalysisPrompt(input llm.AnalyzeInput) []Message {
	return []Message{
		{Role: "system", Content: systemPromptAnalysis},
		{Role: "developer", Content: analysisSchema},
		{Role: "user", Content: buildAnalysisUserPrompt(input)},
	}
}

// BuildChatPrompt creates the chat messages for a follow-up question,
// replaying the prior conversation in order.
func BuildChatPrompt(input llm.ChatInput) []Message {
	messages := []Message{
		{Role: "system", Content: systemPromptChat},
		{Role: "user", Content: buildChatContext(input)},
	}
	for _, turn := range input.History {
		messages = append(messages,
			Message{Role: "user", Content: turn.Question},
			Message{Role: "assistant", Content: turn.Answer},
		)
	}
	messages = append(messages, Message{Role: "user", Content: input.Question})
	return messages
}

func buildAnalysisUserPrompt(input llm.AnalyzeInput) string {
	name := strings.TrimSpace(input.FileName)
	if name == "" {
		name = "document"
	}
	return fmt.Sprintf("File name: %s\n\nDocument text:\n%s", name, input.DocumentText)
}

func buildChatContext(input llm.ChatInput) string {
	var b strings.Builder
	b.WriteString("Document text:\n")
	b.WriteString(input.DocumentText)
	if summary := strings.TrimSpace(input.Summary); summary != "" {
		b.WriteString("\n\nAnalysis summary:\n")
		b.WriteString(summary)
	}
	return b.String()
}
