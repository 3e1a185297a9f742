package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/batchcatalog-backend/internal/catalog/edit"
	"github.com/yungbote/batchcatalog-backend/internal/http/response"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
	"github.com/yungbote/batchcatalog-backend/internal/services"
)

type SessionHandler struct {
	log       *logger.Logger
	editor    services.EditorService
	maxMemory int64
}

func NewSessionHandler(log *logger.Logger, editor services.EditorService, maxMemory int64) *SessionHandler {
	if maxMemory <= 0 {
		maxMemory = 32 << 20
	}
	return &SessionHandler{
		log:       log.With("handler", "SessionHandler"),
		editor:    editor,
		maxMemory: maxMemory,
	}
}

type openSessionRequest struct {
	BatchID string `json:"batch_id"`
}

type setFieldRequest struct {
	Path  edit.Path       `json:"path" binding:"required"`
	Value json.RawMessage `json:"value"`
}

type toggleSelectionRequest struct {
	ContentID string `json:"content_id" binding:"required"`
}

type bulkThumbnailRequest struct {
	Value string `json:"value"`
}

// POST /api/sessions
// With no batch_id the session starts from a template batch.
func (h *SessionHandler) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.editor.Open(c.Request.Context(), strings.TrimSpace(req.BatchID))
	if err != nil {
		response.RespondCatalogError(c, err, "open_session_failed")
		return
	}
	response.RespondCreated(c, gin.H{"session": view})
}

// GET /api/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	h.reply(c, "get_session_failed")(h.editor.Snapshot(c.Param("id")))
}

// DELETE /api/sessions/:id
func (h *SessionHandler) CloseSession(c *gin.Context) {
	if err := h.editor.Close(c.Param("id")); err != nil {
		response.RespondCatalogError(c, err, "close_session_failed")
		return
	}
	response.RespondOK(c, gin.H{"closed": c.Param("id")})
}

// GET /api/sessions/:id/field?path=subjects.0.name
func (h *SessionHandler) GetField(c *gin.Context) {
	path, err := edit.ParsePath(c.Query("path"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_path", err)
		return
	}
	view, err := h.editor.Snapshot(c.Param("id"))
	if err != nil {
		response.RespondCatalogError(c, err, "get_field_failed")
		return
	}
	value, err := edit.Get(view.Batch, path)
	if err != nil {
		response.RespondCatalogError(c, err, "get_field_failed")
		return
	}
	response.RespondOK(c, gin.H{"path": path.String(), "value": value})
}

// PATCH /api/sessions/:id/field
func (h *SessionHandler) SetField(c *gin.Context) {
	var req setFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(req.Value) == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("value is required"))
		return
	}
	h.reply(c, "set_field_failed")(h.editor.SetField(c.Param("id"), req.Path, req.Value))
}

// POST /api/sessions/:id/subjects
func (h *SessionHandler) AddSubject(c *gin.Context) {
	h.reply(c, "add_subject_failed")(h.editor.AddSubject(c.Param("id")))
}

// DELETE /api/sessions/:id/subjects/:subject?confirm=true
func (h *SessionHandler) DeleteSubject(c *gin.Context) {
	idx, ok := indexParams(c, "subject")
	if !ok {
		return
	}
	h.reply(c, "delete_subject_failed")(h.editor.DeleteSubject(c.Param("id"), idx[0], confirmation(c)))
}

// POST /api/sessions/:id/subjects/:subject/sections
func (h *SessionHandler) AddSection(c *gin.Context) {
	idx, ok := indexParams(c, "subject")
	if !ok {
		return
	}
	h.reply(c, "add_section_failed")(h.editor.AddSection(c.Param("id"), idx[0]))
}

// DELETE /api/sessions/:id/subjects/:subject/sections/:section?confirm=true
func (h *SessionHandler) DeleteSection(c *gin.Context) {
	idx, ok := indexParams(c, "subject", "section")
	if !ok {
		return
	}
	h.reply(c, "delete_section_failed")(h.editor.DeleteSection(c.Param("id"), idx[0], idx[1], confirmation(c)))
}

// POST /api/sessions/:id/subjects/:subject/sections/:section/contents
func (h *SessionHandler) AddContent(c *gin.Context) {
	idx, ok := indexParams(c, "subject", "section")
	if !ok {
		return
	}
	h.reply(c, "add_content_failed")(h.editor.AddContent(c.Param("id"), idx[0], idx[1]))
}

// DELETE /api/sessions/:id/subjects/:subject/sections/:section/contents/:content
func (h *SessionHandler) DeleteContent(c *gin.Context) {
	idx, ok := indexParams(c, "subject", "section", "content")
	if !ok {
		return
	}
	h.reply(c, "delete_content_failed")(h.editor.DeleteContent(c.Param("id"), idx[0], idx[1], idx[2]))
}

// POST /api/sessions/:id/selection
func (h *SessionHandler) ToggleSelection(c *gin.Context) {
	var req toggleSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	h.reply(c, "toggle_selection_failed")(h.editor.ToggleSelection(c.Param("id"), req.ContentID))
}

// POST /api/sessions/:id/bulk-thumbnail
func (h *SessionHandler) BulkApplyThumbnail(c *gin.Context) {
	var req bulkThumbnailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	h.reply(c, "bulk_thumbnail_failed")(h.editor.BulkApplyThumbnail(c.Param("id"), req.Value))
}

// POST /api/sessions/:id/subjects/:subject/import
// Multipart "files"; each workbook becomes one section of the subject.
func (h *SessionHandler) ImportSections(c *gin.Context) {
	idx, ok := indexParams(c, "subject")
	if !ok {
		return
	}
	files, err := uploadedFiles(c, h.maxMemory)
	if err != nil {
		code := "invalid_multipart_form"
		if errors.Is(err, errNoFiles) {
			code = "no_files"
		}
		response.RespondError(c, http.StatusBadRequest, code, err)
		return
	}
	report, err := h.editor.ImportSections(c.Request.Context(), c.Param("id"), idx[0], files)
	if err != nil {
		response.RespondCatalogError(c, err, "import_sections_failed")
		return
	}
	response.RespondOK(c, report)
}

// POST /api/sessions/:id/save
func (h *SessionHandler) Save(c *gin.Context) {
	view, err := h.editor.Save(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Warn("Save failed", "session_id", c.Param("id"), "error", err)
		response.RespondCatalogError(c, err, "save_failed")
		return
	}
	response.RespondOK(c, gin.H{"session": view})
}

// POST /api/sessions/:id/discard
func (h *SessionHandler) Discard(c *gin.Context) {
	h.reply(c, "discard_failed")(h.editor.Discard(c.Param("id")))
}

func (h *SessionHandler) reply(c *gin.Context, fallbackCode string) func(*services.SessionView, error) {
	return func(view *services.SessionView, err error) {
		if err != nil {
			response.RespondCatalogError(c, err, fallbackCode)
			return
		}
		response.RespondOK(c, gin.H{"session": view})
	}
}

func indexParams(c *gin.Context, names ...string) ([]int, bool) {
	out := make([]int, 0, len(names))
	for _, name := range names {
		n, err := strconv.Atoi(c.Param(name))
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_index", fmt.Errorf("%s must be an integer", name))
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func confirmation(c *gin.Context) edit.Confirmation {
	v, _ := strconv.ParseBool(c.Query("confirm"))
	return edit.Confirmation(v)
}
