package analyses

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docexplainer-backend/internal/extract"
	"docexplainer-backend/internal/sessions"
	"docexplainer-backend/internal/shared/server/respond"
)

const sessionIDHeader = "X-Session-Id"

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis and session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.analyzeDocument)
	rg.POST("/sessions/:id/questions", h.askQuestion)
	rg.GET("/sessions/:id", h.getSession)
	rg.DELETE("/sessions/:id", h.resetSession)
	rg.GET("/usage", h.getUsage)
}

func (h *Handler) analyzeDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "multipart field 'file' is required", nil)
		return
	}
	if max := h.Svc.MaxUploadBytes; max > 0 && fileHeader.Size > max {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "file is too large", []map[string]string{
			{"field": "file", "issue": "max " + strconv.FormatInt(max, 10) + " bytes"},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "failed to read upload", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "failed to read upload", nil)
		return
	}

	sessionID := c.GetHeader(sessionIDHeader)
	if sessionID != "" {
		c.Set("sessionId", sessionID)
	}

	result, err := h.Svc.Analyze(c.Request.Context(), AnalyzeInput{
		OriginKey:    c.ClientIP(),
		SessionID:    sessionID,
		FileName:     fileHeader.Filename,
		Data:         data,
		StorageOptIn: c.PostForm("storageOptIn") == "true",
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Set("sessionId", result.Session.ID)
	c.Set("provenance", result.Session.Provenance)
	respond.OK(c, toAnalysisResponse(result))
}

func (h *Handler) askQuestion(c *gin.Context) {
	sessionID := c.Param("id")
	c.Set("sessionId", sessionID)

	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "request body must be JSON with a 'question' field", nil)
		return
	}

	entry, err := h.Svc.Ask(c.Request.Context(), AskInput{
		OriginKey: c.ClientIP(),
		SessionID: sessionID,
		Question:  req.Question,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	respond.OK(c, answerResponse{
		SessionID: sessionID,
		Sequence:  entry.Sequence,
		Question:  entry.Question,
		Answer:    entry.Answer,
		AskedAt:   entry.AskedAt,
	})
}

func (h *Handler) getSession(c *gin.Context) {
	sessionID := c.Param("id")
	c.Set("sessionId", sessionID)

	session, err := h.Svc.Session(c.Request.Context(), sessionID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, toSessionResponse(session))
}

func (h *Handler) resetSession(c *gin.Context) {
	sessionID := c.Param("id")
	c.Set("sessionId", sessionID)

	if err := h.Svc.Reset(c.Request.Context(), sessionID); err != nil {
		h.writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) getUsage(c *gin.Context) {
	respond.OK(c, toUsageResponse(h.Svc.Usage(c.ClientIP())))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if qe, ok := IsQuotaExceeded(err); ok {
		retryAfterMs := qe.RetryAfter.Milliseconds()
		retryAfterSec := int64(math.Ceil(qe.RetryAfter.Seconds()))
		c.Header("Retry-After", strconv.FormatInt(retryAfterSec, 10))
		respond.Error(c, http.StatusTooManyRequests, ErrorCodeQuotaExceeded,
			"You've reached the "+qe.Operation+" limit. Try again later.", gin.H{
				"operation":    qe.Operation,
				"retryAfterMs": retryAfterMs,
			})
		return
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
	case errors.Is(err, extract.ErrUnsupportedFormat):
		respond.Error(c, http.StatusUnsupportedMediaType, ErrorCodeUnsupportedFormat,
			"unsupported file type", gin.H{"supported": extract.SupportedExtensions()})
	case errors.Is(err, extract.ErrCorruptInput):
		respond.Error(c, http.StatusUnprocessableEntity, ErrorCodeCorruptDocument,
			"the file could not be read as its declared format", nil)
	case errors.Is(err, extract.ErrEngineUnavailable):
		respond.Error(c, http.StatusUnprocessableEntity, ErrorCodeRecognition,
			"text recognition is unavailable for this document", nil)
	case errors.Is(err, sessions.ErrNotFound):
		respond.Error(c, http.StatusNotFound, ErrorCodeSessionNotFound, "session not found", nil)
	case errors.Is(err, ErrProvider):
		respond.Error(c, http.StatusBadGateway, ErrorCodeProvider, "the analysis provider failed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "internal error", nil)
	}
}
