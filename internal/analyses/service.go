package analyses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docexplainer-backend/internal/extract"
	"docexplainer-backend/internal/history"
	"docexplainer-backend/internal/llm"
	"docexplainer-backend/internal/ratelimit"
	"docexplainer-backend/internal/sessions"
	"docexplainer-backend/internal/shared/metrics"
	"docexplainer-backend/internal/shared/storage/object"
	"docexplainer-backend/internal/shared/telemetry"
	"docexplainer-backend/internal/shared/util"
)

const historyWriteTimeout = 10 * time.Second

// Service orchestrates the analysis pipeline: admission, extraction,
// provider call, session state, optional object storage and the history
// sink.
type Service struct {
	Sessions        sessions.Store
	Engine          *extract.Engine
	LLM             llm.Client
	Store           object.ObjectStore // nil when object storage is off
	History         history.Repo       // nil when no history sink is configured
	AnalysisLimiter *ratelimit.Limiter
	ChatLimiter     *ratelimit.Limiter
	MaxUploadBytes  int64

	now func() time.Time
	wg  sync.WaitGroup
}

// NewService constructs a Service.
func NewService(
	store sessions.Store,
	engine *extract.Engine,
	client llm.Client,
	objects object.ObjectStore,
	hist history.Repo,
	analysisLimiter, chatLimiter *ratelimit.Limiter,
	maxUploadBytes int64,
) *Service {
	return &Service{
		Sessions:        store,
		Engine:          engine,
		LLM:             client,
		Store:           objects,
		History:         hist,
		AnalysisLimiter: analysisLimiter,
		ChatLimiter:     chatLimiter,
		MaxUploadBytes:  maxUploadBytes,
		now:             time.Now,
	}
}

// AnalyzeInput is one document upload.
type AnalyzeInput struct {
	OriginKey    string
	SessionID    string // optional; empty means a new session
	FileName     string
	Data         []byte
	StorageOptIn bool
}

// AnalyzeResult is a completed analysis plus non-fatal warnings.
type AnalyzeResult struct {
	Session  *sessions.Session
	Warnings []string
}

// Analyze runs the full pipeline for one uploaded document. Denied
// admissions return before any extraction or provider work happens.
func (s *Service) Analyze(ctx context.Context, input AnalyzeInput) (AnalyzeResult, error) {
	if strings.TrimSpace(input.FileName) == "" {
		return AnalyzeResult{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if len(input.Data) == 0 {
		return AnalyzeResult{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if s.MaxUploadBytes > 0 && int64(len(input.Data)) > s.MaxUploadBytes {
		return AnalyzeResult{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, s.MaxUploadBytes)
	}

	kind, err := extract.DetectMediaKind(input.FileName)
	if err != nil {
		return AnalyzeResult{}, err
	}

	if s.AnalysisLimiter != nil {
		decision := s.AnalysisLimiter.Admit(input.OriginKey)
		if !decision.Allowed {
			metrics.IncQuotaDenied()
			return AnalyzeResult{}, &QuotaExceededError{Operation: "analysis", RetryAfter: decision.RetryAfter}
		}
	}

	metrics.IncAnalysisStarted()
	startedAt := s.now()

	extracted, err := s.Engine.Extract(ctx, extract.Document{
		FileName:  input.FileName,
		MediaKind: kind,
		Data:      input.Data,
	})
	if err != nil {
		metrics.IncAnalysisFailed()
		return AnalyzeResult{}, err
	}

	raw, err := s.LLM.AnalyzeDocument(ctx, llm.AnalyzeInput{
		DocumentText: extracted.Text,
		FileName:     input.FileName,
	})
	if err != nil {
		metrics.IncAnalysisFailed()
		return AnalyzeResult{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	record, err := NormalizeAnalysis(raw)
	if err != nil {
		metrics.IncAnalysisFailed()
		return AnalyzeResult{}, err
	}

	var warnings []string
	storageKey := ""
	if input.StorageOptIn && s.Store != nil {
		key, _, _, err := s.Store.Save(ctx, input.FileName, bytes.NewReader(input.Data))
		if err != nil {
			telemetry.Warn("analysis.storage_failed", map[string]any{
				"origin": util.HashOriginKey(input.OriginKey),
				"error":  err.Error(),
			})
			warnings = append(warnings, WarningStorageUnavailable)
		} else {
			storageKey = key
		}
	}

	session := &sessions.Session{
		ID:           input.SessionID,
		CreatedAt:    s.now().UTC(),
		FileName:     input.FileName,
		Provenance:   string(extracted.Provenance),
		DocumentText: extracted.Text,
		StorageKey:   storageKey,
		Analysis:     record,
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if err := s.Sessions.Put(ctx, session); err != nil {
		metrics.IncAnalysisFailed()
		return AnalyzeResult{}, err
	}

	s.appendHistory(session)

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(s.now().Sub(startedAt).Milliseconds()))
	telemetry.Info("analysis.completed", map[string]any{
		"session_id":       session.ID,
		"provenance":       session.Provenance,
		"pages":            extracted.PageCount,
		"recognized_pages": extracted.RecognizedPages,
		"stored":           storageKey != "",
	})

	snapshot, err := s.Sessions.Get(ctx, session.ID)
	if err != nil {
		return AnalyzeResult{}, err
	}
	return AnalyzeResult{Session: snapshot, Warnings: warnings}, nil
}

// appendHistory writes to the history sink off the request path. Failures
// are logged, never surfaced.
func (s *Service) appendHistory(session *sessions.Session) {
	if s.History == nil {
		return
	}

	rec := history.Record{
		FileName:    session.FileName,
		CreatedAt:   session.CreatedAt,
		Summary:     session.Analysis.Summary,
		KeyPoints:   session.Analysis.KeyPoints,
		Obligations: session.Analysis.Obligations,
		Risks:       session.Analysis.Risks,
		NextSteps:   session.Analysis.NextSteps,
		Checklist:   session.Analysis.Checklist,
		Confidence:  session.Analysis.Confidence,
		StorageKey:  session.StorageKey,
	}
	for _, d := range session.Analysis.Deadlines {
		rec.Deadlines = append(rec.Deadlines, history.DeadlineItem{Description: d.Description, Date: d.Date})
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
		defer cancel()
		if err := s.History.Create(ctx, rec); err != nil {
			telemetry.Warn("analysis.history_write_failed", map[string]any{
				"file_name": rec.FileName,
				"error":     err.Error(),
			})
		}
	}()
}

// AskInput is one follow-up question against an existing session.
type AskInput struct {
	OriginKey string
	SessionID string
	Question  string
}

// Ask answers a follow-up question and appends the exchange to the
// session's conversation log.
func (s *Service) Ask(ctx context.Context, input AskInput) (sessions.ConversationEntry, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return sessions.ConversationEntry{}, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}

	session, err := s.Sessions.Get(ctx, input.SessionID)
	if err != nil {
		return sessions.ConversationEntry{}, err
	}

	if s.ChatLimiter != nil {
		decision := s.ChatLimiter.Admit(input.OriginKey)
		if !decision.Allowed {
			metrics.IncQuotaDenied()
			return sessions.ConversationEntry{}, &QuotaExceededError{Operation: "chat", RetryAfter: decision.RetryAfter}
		}
	}

	turns := make([]llm.Turn, 0, len(session.Conversation))
	for _, ce := range session.Conversation {
		turns = append(turns, llm.Turn{Question: ce.Question, Answer: ce.Answer})
	}

	answer, err := s.LLM.Answer(ctx, llm.ChatInput{
		DocumentText: session.DocumentText,
		Summary:      session.Analysis.Summary,
		History:      turns,
		Question:     question,
	})
	if err != nil {
		return sessions.ConversationEntry{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	entry, err := s.Sessions.AppendConversation(ctx, input.SessionID, question, answer)
	if err != nil {
		return sessions.ConversationEntry{}, err
	}

	metrics.IncQuestionAnswered()
	return entry, nil
}

// Session returns a snapshot of the session state.
func (s *Service) Session(ctx context.Context, sessionID string) (*sessions.Session, error) {
	return s.Sessions.Get(ctx, sessionID)
}

// Reset removes the session. The conversation log and document text are
// gone for good; stored objects stay until history is deleted.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	return s.Sessions.Reset(ctx, sessionID)
}

// UsageReport is the current quota consumption for one origin.
type UsageReport struct {
	Analysis QuotaUsage
	Chat     QuotaUsage
}

// QuotaUsage is one limiter's view of an origin.
type QuotaUsage struct {
	Limit     int
	Used      int
	Remaining int
	ResetIn   time.Duration
}

// Usage reports quota consumption without consuming any.
func (s *Service) Usage(originKey string) UsageReport {
	var report UsageReport
	if s.AnalysisLimiter != nil {
		u := s.AnalysisLimiter.Peek(originKey)
		report.Analysis = QuotaUsage{
			Limit:     s.AnalysisLimiter.Limit(),
			Used:      u.Used,
			Remaining: u.Remaining,
			ResetIn:   u.ResetIn,
		}
	}
	if s.ChatLimiter != nil {
		u := s.ChatLimiter.Peek(originKey)
		report.Chat = QuotaUsage{
			Limit:     s.ChatLimiter.Limit(),
			Used:      u.Used,
			Remaining: u.Remaining,
			ResetIn:   u.ResetIn,
		}
	}
	return report
}

// IsQuotaExceeded reports whether err is a quota denial, unwrapping as
// needed.
func IsQuotaExceeded(err error) (*QuotaExceededError, bool) {
	var qe *QuotaExceededError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
