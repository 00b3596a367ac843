package analyses

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"docexplainer-backend/internal/ratelimit"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func multipartUpload(t *testing.T, fileName string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func postAnalysis(t *testing.T, router *gin.Engine, fileName string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, fileName, data, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPostAnalysisHappyPath(t *testing.T) {
	svc, _ := newTestService(&fakeLLM{analysisJSON: validAnalysisJSON})
	router := newTestRouter(svc)

	rec := postAnalysis(t, router, "lease.png", pngUpload(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp analysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("missing sessionId")
	}
	if resp.Analysis.Summary != "a residential lease agreement" {
		t.Fatalf("summary = %q", resp.Analysis.Summary)
	}
	if resp.Provenance != "recognized" {
		t.Fatalf("provenance = %q", resp.Provenance)
	}
}

func TestPostAnalysisMissingFile(t *testing.T) {
	svc, _ := newTestService(&fakeLLM{analysisJSON: validAnalysisJSON})
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ErrorCodeValidation) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestPostAnalysisUnsupportedFormat(t *testing.T) {
	svc, _ := newTestService(&fakeLLM{analysisJSON: validAnalysisJSON})
	router := newTestRouter(svc)

	rec := postAnalysis(t, router, "notes.docx", []byte("hello"))
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ErrorCodeUnsupportedFormat) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestPostAnalysisQuotaExceeded(t *testing.T) {
	svc, _ := newTestService(&fakeLLM{analysisJSON: validAnalysisJSON})
	svc.AnalysisLimiter = ratelimit.New(1, 24*time.Hour)
	router := newTestRouter(svc)

	if rec := postAnalysis(t, router, "a.png", pngUpload(t)); rec.Code != http.StatusOK {
		t.Fatalf("first upload: %d", rec.Code)
	}

	rec := postAnalysis(t, router, "b.png", pngUpload(t))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
	if !strings.Contains(rec.Body.String(), "retryAfterMs") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestQuestionFlow(t *testing.T) {
	svc, _ := newTestService(&fakeLLM{analysisJSON: validAnalysisJSON, answer: "rent is due on the first"})
	router := newTestRouter(svc)

	rec := postAnalysis(t, router, "lease.png", pngUpload(t))
	var created analysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	body := strings.NewReader(`{"question":"when is rent due?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+created.SessionID+"/questions", body)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var answer answerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &answer); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if answer.Sequence != 1 || answer.Answer != "rent is due on the first" {
		t.Fatalf("answer = %+v", answer)
	}

	// The session view shows the exchange.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+created.SessionID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("session status = %d", rec.Code)
	}
	var view sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Conversation) != 1 || view.Conversation[0].Question != "when is rent due?" {
		t.Fatalf("conversation = %+v", view.Conversation)
	}
}

func TestQuestionUnknownSession(t *testing.T) {
	svc, _ := newTestService(&fakeLLM{analysisJSON: validAnalysisJSON, answer: "a"})
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/nope/questions", strings.NewReader(`{"question":"q"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ErrorCodeSessionNotFound) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestQuestionEmptyBody(t *testing.T) {
	svc, _ := newTestService(&fakeLLM{analysisJSON: validAnalysisJSON, answer: "a"})
	router := newTestRouter(svc)

	rec := postAnalysis(t, router, "lease.png", pngUpload(t))
	var created analysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+created.SessionID+"/questions", strings.NewReader(`{"question":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestResetSession(t *testing.T) {
	svc, _ := newTestService(&fakeLLM{analysisJSON: validAnalysisJSON})
	router := newTestRouter(svc)

	rec := postAnalysis(t, router, "lease.png", pngUpload(t))
	var created analysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+created.SessionID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+created.SessionID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d", rec.Code)
	}
}

func TestGetUsage(t *testing.T) {
	svc, _ := newTestService(&fakeLLM{analysisJSON: validAnalysisJSON})
	router := newTestRouter(svc)

	postAnalysis(t, router, "lease.png", pngUpload(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var usage usageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &usage); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if usage.Analysis.Used != 1 || usage.Analysis.Limit != 10 {
		t.Fatalf("analysis usage = %+v", usage.Analysis)
	}
	if usage.Chat.Used != 0 || usage.Chat.Limit != 20 {
		t.Fatalf("chat usage = %+v", usage.Chat)
	}
}

func TestSessionReuseViaHeader(t *testing.T) {
	svc, _ := newTestService(&fakeLLM{analysisJSON: validAnalysisJSON})
	router := newTestRouter(svc)

	rec := postAnalysis(t, router, "a.png", pngUpload(t))
	var first analysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}

	body, contentType := multipartUpload(t, "b.png", pngUpload(t), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Session-Id", first.SessionID)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var second analysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Fatalf("session id = %q, want %q", second.SessionID, first.SessionID)
	}
	if second.FileName != "b.png" {
		t.Fatalf("file name = %q", second.FileName)
	}
}
