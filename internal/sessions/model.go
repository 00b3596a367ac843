package sessions

import "time"

// Deadline is a dated obligation surfaced by the analysis.
type Deadline struct {
	Description string     `json:"description"`
	Date        *time.Time `json:"date,omitempty"`
}

// AnalysisRecord is the structured result of analyzing one document.
// Slice fields are never nil.
type AnalysisRecord struct {
	Summary     string     `json:"summary"`
	KeyPoints   []string   `json:"keyPoints"`
	Deadlines   []Deadline `json:"deadlines"`
	Obligations []string   `json:"obligations"`
	Risks       []string   `json:"risks"`
	NextSteps   []string   `json:"nextSteps"`
	Checklist   []string   `json:"checklist"`
	Confidence  float64    `json:"confidence"`
}

// ConversationEntry is one question/answer exchange. Sequence numbers are
// assigned by the store: strictly increasing and gap-free per session.
type ConversationEntry struct {
	Sequence int       `json:"sequence"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"askedAt"`
}

// Session is the per-user conversational state around one analyzed
// document. A new analysis replaces the session wholesale.
type Session struct {
	ID           string              `json:"id"`
	CreatedAt    time.Time           `json:"createdAt"`
	FileName     string              `json:"fileName"`
	Provenance   string              `json:"provenance"`
	DocumentText string              `json:"-"`
	StorageKey   string              `json:"storageKey,omitempty"`
	Analysis     AnalysisRecord      `json:"analysis"`
	Conversation []ConversationEntry `json:"conversation"`
}
