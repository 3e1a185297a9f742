package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/batchcatalog-backend/internal/http/response"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
	"github.com/yungbote/batchcatalog-backend/internal/services"
)

type ImportHandler struct {
	log       *logger.Logger
	imports   services.ImportService
	maxMemory int64
}

func NewImportHandler(log *logger.Logger, imports services.ImportService, maxMemory int64) *ImportHandler {
	if maxMemory <= 0 {
		maxMemory = 32 << 20
	}
	return &ImportHandler{
		log:       log.With("handler", "ImportHandler"),
		imports:   imports,
		maxMemory: maxMemory,
	}
}

// POST /api/imports/folder
// Query dry_run=true previews the batches without storing them.
func (h *ImportHandler) ImportFolder(c *gin.Context) {
	files, err := uploadedFiles(c, h.maxMemory)
	if err != nil {
		code := "invalid_multipart_form"
		if errors.Is(err, errNoFiles) {
			code = "no_files"
		}
		response.RespondError(c, http.StatusBadRequest, code, err)
		return
	}

	if c.Query("dry_run") == "true" {
		response.RespondOK(c, h.imports.PreviewFolder(c.Request.Context(), files))
		return
	}

	res, err := h.imports.ImportFolder(c.Request.Context(), files)
	if err != nil {
		h.log.Error("ImportFolder failed", "files", len(files), "error", err)
		response.RespondCatalogError(c, err, "import_failed")
		return
	}
	status := http.StatusCreated
	if len(res.Batches) == 0 {
		status = http.StatusOK
	}
	c.JSON(status, res)
}
