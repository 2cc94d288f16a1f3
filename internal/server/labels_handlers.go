package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"organizer/internal/labels"
)

type labelRequestPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *httpHandler) handleLabelsList(c *gin.Context) {
	items, err := h.labels.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"labels": items})
}

func (h *httpHandler) handleLabelCreate(c *gin.Context) {
	var request labelRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	label, err := h.labels.Create(c.Request.Context(), request.Name, request.Color)
	if err != nil {
		h.respondLabelError(c, err)
		return
	}
	c.JSON(http.StatusCreated, label)
}

func (h *httpHandler) handleLabelRename(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var request labelRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	label, err := h.labels.Rename(c.Request.Context(), id, request.Name)
	if err != nil {
		h.respondLabelError(c, err)
		return
	}
	if label == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, label)
}

func (h *httpHandler) handleLabelDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.labels.Delete(c.Request.Context(), id); err != nil {
		h.respondLabelError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Name validation rejections map to client errors; everything else is a
// server failure.
func (h *httpHandler) respondLabelError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, labels.ErrEmptyName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_name"})
	case errors.Is(err, labels.ErrReservedName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "reserved_name"})
	case errors.Is(err, labels.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_name"})
	default:
		h.logger.Error("label operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "label_failed"})
	}
}
