package analyses

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docexplainer-backend/internal/sessions"
)

const deadlineDateLayout = "2006-01-02"

type rawAnalysis struct {
	Summary              string        `json:"summary"`
	ImportantPoints      []string      `json:"important_points"`
	Deadlines            []rawDeadline `json:"deadlines"`
	Obligations          []string      `json:"obligations"`
	Risks                []string      `json:"risks"`
	RecommendedNextSteps []string      `json:"recommended_next_steps"`
	ActionItems          []string      `json:"action_items"`
	Confidence           float64       `json:"confidence"`
}

type rawDeadline struct {
	Description string `json:"description"`
	Date        string `json:"date"`
}

// UnmarshalJSON accepts both the schema object form and a bare string, which
// some models emit for undated deadlines.
func (d *rawDeadline) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d.Description = s
		return nil
	}
	type alias rawDeadline
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*d = rawDeadline(obj)
	return nil
}

// NormalizeAnalysis validates the provider payload and maps it onto an
// AnalysisRecord. Slice fields of the result are never nil, strings are
// trimmed and confidence is clamped to [0, 1].
func NormalizeAnalysis(raw json.RawMessage) (sessions.AnalysisRecord, error) {
	var parsed rawAnalysis
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return sessions.AnalysisRecord{}, fmt.Errorf("%w: parse analysis payload: %v", ErrProvider, err)
	}

	summary := strings.TrimSpace(parsed.Summary)
	if summary == "" {
		return sessions.AnalysisRecord{}, fmt.Errorf("%w: analysis payload missing summary", ErrProvider)
	}

	record := sessions.AnalysisRecord{
		Summary:     summary,
		KeyPoints:   cleanStrings(parsed.ImportantPoints),
		Deadlines:   cleanDeadlines(parsed.Deadlines),
		Obligations: cleanStrings(parsed.Obligations),
		Risks:       cleanStrings(parsed.Risks),
		NextSteps:   cleanStrings(parsed.RecommendedNextSteps),
		Checklist:   cleanStrings(parsed.ActionItems),
		Confidence:  clampConfidence(parsed.Confidence),
	}
	return record, nil
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func cleanDeadlines(in []rawDeadline) []sessions.Deadline {
	out := make([]sessions.Deadline, 0, len(in))
	for _, d := range in {
		description := strings.TrimSpace(d.Description)
		if description == "" {
			continue
		}
		deadline := sessions.Deadline{Description: description}
		if date := strings.TrimSpace(d.Date); date != "" && !strings.EqualFold(date, "null") {
			if parsed, err := time.Parse(deadlineDateLayout, date); err == nil {
				deadline.Date = &parsed
			}
		}
		out = append(out, deadline)
	}
	return out
}

func clampConfidence(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
