package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
	"github.com/yungbote/batchcatalog-backend/internal/http/response"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
	"github.com/yungbote/batchcatalog-backend/internal/platform/playback"
	"github.com/yungbote/batchcatalog-backend/internal/services"
)

type BatchHandler struct {
	log      *logger.Logger
	batches  services.BatchService
	playback playback.Normalizer
}

func NewBatchHandler(log *logger.Logger, batches services.BatchService, normalizer playback.Normalizer) *BatchHandler {
	return &BatchHandler{
		log:      log.With("handler", "BatchHandler"),
		batches:  batches,
		playback: normalizer,
	}
}

// GET /api/batches
func (h *BatchHandler) ListBatches(c *gin.Context) {
	list, err := h.batches.List(c.Request.Context())
	if err != nil {
		h.log.Error("ListBatches failed", "error", err)
		response.RespondCatalogError(c, err, "list_batches_failed")
		return
	}
	response.RespondOK(c, gin.H{"batches": list})
}

// POST /api/batches
// An empty body stores a fresh template batch.
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	var b catalog.Batch
	if err := c.ShouldBindJSON(&b); err != nil {
		if !errors.Is(err, io.EOF) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		b = *catalog.NewBatch("", time.Now())
	}
	if b.Layout == "" {
		b.Layout = catalog.LayoutGrid
	}
	if strings.TrimSpace(b.Name) == "" {
		b.Name = catalog.DefaultBatchName
	}
	created, err := h.batches.Create(c.Request.Context(), &b)
	if err != nil {
		response.RespondCatalogError(c, err, "create_batch_failed")
		return
	}
	response.RespondCreated(c, gin.H{"batch": created})
}

// GET /api/batches/:id
func (h *BatchHandler) GetBatch(c *gin.Context) {
	b, err := h.batches.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondCatalogError(c, err, "get_batch_failed")
		return
	}
	response.RespondOK(c, gin.H{"batch": b})
}

// PATCH /api/batches/:id
func (h *BatchHandler) UpdateBatch(c *gin.Context) {
	var patch catalog.BatchPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	b, err := h.batches.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.RespondCatalogError(c, err, "update_batch_failed")
		return
	}
	response.RespondOK(c, gin.H{"batch": b})
}

// DELETE /api/batches/:id
func (h *BatchHandler) DeleteBatch(c *gin.Context) {
	id := c.Param("id")
	if err := h.batches.Delete(c.Request.Context(), id); err != nil {
		response.RespondCatalogError(c, err, "delete_batch_failed")
		return
	}
	response.RespondOK(c, gin.H{"deleted": id})
}

// GET /api/batches/:id/export?playback=live|recorded
// Without playback the stored urls are exported as they are.
func (h *BatchHandler) ExportBatch(c *gin.Context) {
	var opts catalog.ExportOptions
	switch mode := strings.ToLower(strings.TrimSpace(c.Query("playback"))); mode {
	case "":
	case "live", "recorded":
		isLive := mode == "live"
		opts.RewriteURL = func(raw string) string { return h.playback.Normalize(raw, isLive) }
	default:
		response.RespondError(c, http.StatusBadRequest, "invalid_playback_mode", errors.New("playback must be live or recorded"))
		return
	}

	b, err := h.batches.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondCatalogError(c, err, "export_batch_failed")
		return
	}
	response.RespondOK(c, catalog.Export(b, opts))
}
