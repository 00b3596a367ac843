package history

import "time"

// DeadlineItem is a dated obligation as stored in the history sink.
type DeadlineItem struct {
	Description string     `json:"description"`
	Date        *time.Time `json:"date,omitempty"`
}

// Record is one completed analysis in the append-only history sink.
type Record struct {
	ID          int64          `json:"id"`
	FileName    string         `json:"fileName"`
	CreatedAt   time.Time      `json:"createdAt"`
	Summary     string         `json:"summary"`
	KeyPoints   []string       `json:"keyPoints"`
	Deadlines   []DeadlineItem `json:"deadlines"`
	Obligations []string       `json:"obligations"`
	Risks       []string       `json:"risks"`
	NextSteps   []string       `json:"nextSteps"`
	Checklist   []string       `json:"checklist"`
	Confidence  float64        `json:"confidence"`
	StorageKey  string         `json:"storageKey,omitempty"`
}
