package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"organizer/internal/export"
	"organizer/internal/notes"
)

func (h *httpHandler) handleNotesList(c *gin.Context) {
	view, err := notes.ParseView(c.Query("view"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_view"})
		return
	}
	filter := notes.Filter{
		View:   view,
		Search: c.Query("q"),
		Label:  c.Query("label"),
	}
	items, err := h.notes.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("note listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": items})
}

func (h *httpHandler) handleNoteGet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	note, err := h.notes.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}
	if note == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *httpHandler) handleNoteCreate(c *gin.Context) {
	var note notes.Note
	if err := c.ShouldBindJSON(&note); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if note.Type != "" {
		if _, err := notes.ParseType(string(note.Type)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_type"})
			return
		}
	}
	id, err := h.notes.Create(c.Request.Context(), note)
	if err != nil {
		h.logger.Error("note create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *httpHandler) handleNoteUpdate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var note notes.Note
	if err := c.ShouldBindJSON(&note); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	note.ID = id
	if err := h.notes.Update(c.Request.Context(), note); err != nil {
		h.logger.Error("note update failed", zap.Error(err), zap.Uint("note_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleNoteDelete(c *gin.Context) {
	h.noteLifecycle(c, h.notes.DeletePermanently)
}

func (h *httpHandler) handleNoteTrash(c *gin.Context) {
	h.noteLifecycle(c, h.notes.Trash)
}

func (h *httpHandler) handleNoteArchive(c *gin.Context) {
	h.noteLifecycle(c, h.notes.Archive)
}

func (h *httpHandler) handleNoteRestore(c *gin.Context) {
	h.noteLifecycle(c, h.notes.Restore)
}

func (h *httpHandler) handleNotePin(c *gin.Context) {
	h.noteLifecycle(c, h.notes.TogglePin)
}

type bulkRequestPayload struct {
	Action string `json:"action"`
	IDs    []uint `json:"ids"`
}

func (h *httpHandler) handleNotesBulk(c *gin.Context) {
	var request bulkRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil || len(request.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	action, err := notes.ParseAction(request.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_action"})
		return
	}
	if err := h.notes.BulkAction(c.Request.Context(), action, request.IDs); err != nil {
		h.logger.Error("bulk action failed", zap.Error(err), zap.String("action", request.Action))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bulk_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleEmptyTrash(c *gin.Context) {
	if err := h.notes.EmptyTrash(c.Request.Context()); err != nil {
		h.logger.Error("empty trash failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "empty_trash_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleNotesExport(c *gin.Context) {
	// The whole table by default; a view parameter narrows the dump.
	var items []notes.Note
	var err error
	if raw := c.Query("view"); raw == "" {
		items, err = h.notes.Export(c.Request.Context())
	} else {
		view, parseErr := notes.ParseView(raw)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_view"})
			return
		}
		items, err = h.notes.List(c.Request.Context(), notes.Filter{View: view})
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export_failed"})
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		payload, err := export.NotesJSON(items)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export_failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="notes.json"`)
		c.Data(http.StatusOK, "application/json", payload)
	case "txt":
		c.Header("Content-Disposition", `attachment; filename="notes.txt"`)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(export.NotesTXT(items)))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_format"})
	}
}

func (h *httpHandler) handleNoteExport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	note, err := h.notes.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export_failed"})
		return
	}
	if note == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	base := export.SanitizeFilename(note.Title) + "_" + export.FilenameDate(note.UpdatedAtMs)
	switch c.DefaultQuery("format", "txt") {
	case "txt":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+".txt"))
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(export.NoteTXT(*note)))
	case "doc":
		doc, err := export.NoteDoc(*note)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export_failed"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+".doc"))
		c.Data(http.StatusOK, "application/msword", []byte(doc))
	case "json":
		payload, err := export.NotesJSON([]notes.Note{*note})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export_failed"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+".json"))
		c.Data(http.StatusOK, "application/json", payload)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_format"})
	}
}

func (h *httpHandler) handleNotesImport(c *gin.Context) {
	filename, data, ok := uploadedFile(c)
	if !ok {
		return
	}
	parsed, err := export.ImportNotes(filename, data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_format"})
		return
	}

	imported := 0
	for _, note := range parsed {
		if _, err := h.notes.Import(c.Request.Context(), note); err != nil {
			h.logger.Error("note import insert failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "import_failed"})
			return
		}
		imported++
	}
	c.JSON(http.StatusOK, gin.H{"imported": imported})
}

func (h *httpHandler) noteLifecycle(c *gin.Context, op func(ctx context.Context, id uint) error) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := op(c.Request.Context(), id); err != nil {
		h.logger.Error("note lifecycle change failed", zap.Error(err), zap.Uint("note_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lifecycle_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func pathID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})
		return 0, false
	}
	return uint(parsed), true
}

func uploadedFile(c *gin.Context) (string, []byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_file"})
		return "", nil, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_file"})
		return "", nil, false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_file"})
		return "", nil, false
	}
	return fileHeader.Filename, data, true
}
