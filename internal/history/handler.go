package history

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"docexplainer-backend/internal/shared/server/respond"
	"docexplainer-backend/internal/shared/storage/object"
	"docexplainer-backend/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the history repo.
type Handler struct {
	Repo  Repo
	Store object.ObjectStore // may be nil when object storage is off
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo, store object.ObjectStore) *Handler {
	return &Handler{Repo: repo, Store: store}
}

// RegisterRoutes attaches history routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/history", h.listHistory)
	rg.DELETE("/history", h.deleteHistory)
	rg.GET("/history/:id/document", h.downloadDocument)
}

func (h *Handler) listHistory(c *gin.Context) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	records, err := h.Repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list history", nil)
		return
	}
	respond.OK(c, gin.H{"items": records})
}

func (h *Handler) deleteHistory(c *gin.Context) {
	deleted, keys, err := h.Repo.DeleteAll(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete history", nil)
		return
	}

	// Object cleanup is best effort; the records are already gone.
	if h.Store != nil {
		for _, key := range keys {
			if err := h.Store.Delete(c.Request.Context(), key); err != nil {
				telemetry.Warn("history.object_delete_failed", map[string]any{
					"storage_key": key,
					"error":       err.Error(),
				})
			}
		}
	}

	respond.JSON(c, http.StatusOK, gin.H{"deleted": deleted})
}

// downloadDocument streams the stored source document of one history
// record. Records analyzed without storage opt-in have no object to
// serve.
func (h *Handler) downloadDocument(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "history id must be a positive integer", nil)
		return
	}

	rec, err := h.Repo.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "history_record_not_found", "history record not found", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load history record", nil)
		return
	}
	if rec.StorageKey == "" || h.Store == nil {
		respond.Error(c, http.StatusNotFound, "document_not_stored", "no stored document for this record", nil)
		return
	}

	rc, err := h.Store.Open(c.Request.Context(), rec.StorageKey)
	if err != nil {
		telemetry.Warn("history.object_open_failed", map[string]any{
			"storage_key": rec.StorageKey,
			"error":       err.Error(),
		})
		respond.Error(c, http.StatusBadGateway, "storage_unavailable", "stored document could not be retrieved", nil)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(rec.FileName, `"`, "")+`"`)
	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", rc, nil)
}
