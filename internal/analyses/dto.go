package analyses

import (
	"time"

	"docexplainer-backend/internal/sessions"
)

type questionRequest struct {
	Question string `json:"question"`
}

type analysisResponse struct {
	SessionID  string                  `json:"sessionId"`
	FileName   string                  `json:"fileName"`
	Provenance string                  `json:"provenance"`
	CreatedAt  time.Time               `json:"createdAt"`
	Analysis   sessions.AnalysisRecord `json:"analysis"`
	StorageKey string                  `json:"storageKey,omitempty"`
	Warnings   []string                `json:"warnings,omitempty"`
}

type answerResponse struct {
	SessionID string    `json:"sessionId"`
	Sequence  int       `json:"sequence"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	AskedAt   time.Time `json:"askedAt"`
}

type sessionResponse struct {
	SessionID    string                       `json:"sessionId"`
	FileName     string                       `json:"fileName"`
	Provenance   string                       `json:"provenance"`
	CreatedAt    time.Time                    `json:"createdAt"`
	Analysis     sessions.AnalysisRecord      `json:"analysis"`
	StorageKey   string                       `json:"storageKey,omitempty"`
	Conversation []sessions.ConversationEntry `json:"conversation"`
}

type quotaUsageBody struct {
	Limit     int   `json:"limit"`
	Used      int   `json:"used"`
	Remaining int   `json:"remaining"`
	ResetInMs int64 `json:"resetInMs"`
}

type usageResponse struct {
	Analysis quotaUsageBody `json:"analysis"`
	Chat     quotaUsageBody `json:"chat"`
}

func toAnalysisResponse(res AnalyzeResult) analysisResponse {
	s := res.Session
	return analysisResponse{
		SessionID:  s.ID,
		FileName:   s.FileName,
		Provenance: s.Provenance,
		CreatedAt:  s.CreatedAt,
		Analysis:   s.Analysis,
		StorageKey: s.StorageKey,
		Warnings:   res.Warnings,
	}
}

func toSessionResponse(s *sessions.Session) sessionResponse {
	conversation := s.Conversation
	if conversation == nil {
		conversation = []sessions.ConversationEntry{}
	}
	return sessionResponse{
		SessionID:    s.ID,
		FileName:     s.FileName,
		Provenance:   s.Provenance,
		CreatedAt:    s.CreatedAt,
		Analysis:     s.Analysis,
		StorageKey:   s.StorageKey,
		Conversation: conversation,
	}
}

func toUsageResponse(report UsageReport) usageResponse {
	return usageResponse{
		Analysis: toQuotaUsageBody(report.Analysis),
		Chat:     toQuotaUsageBody(report.Chat),
	}
}

func toQuotaUsageBody(u QuotaUsage) quotaUsageBody {
	return quotaUsageBody{
		Limit:     u.Limit,
		Used:      u.Used,
		Remaining: u.Remaining,
		ResetInMs: u.ResetIn.Milliseconds(),
	}
}
