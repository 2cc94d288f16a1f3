package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"organizer/internal/images"
)

// Compression targets per rendition.
const (
	imageMaxWidthFull      = 1920
	imageQualityFull       = 85
	imageMaxWidthThumbnail = 320
	imageQualityThumbnail  = 70
)

func (h *httpHandler) handleImageUpload(c *gin.Context) {
	_, data, ok := uploadedFile(c)
	if !ok {
		return
	}
	variant, err := images.ParseVariant(c.PostForm("variant"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_variant"})
		return
	}

	key := strings.TrimSpace(c.PostForm("key"))
	if key == "" {
		generated, err := uuid.NewV7()
		if err != nil {
			h.logger.Error("image key generation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "save_failed"})
			return
		}
		key = generated.String()
	}

	mimeType := c.PostForm("mimeType")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	maxWidth := imageMaxWidthFull
	quality := imageQualityFull
	if variant == images.VariantThumbnail {
		maxWidth = imageMaxWidthThumbnail
		quality = imageQualityThumbnail
	}
	compressed, err := h.compressor.Compress(data, maxWidth, quality)
	if err != nil {
		h.logger.Error("image compression failed", zap.Error(err), zap.String("key", key))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save_failed"})
		return
	}

	if err := h.images.Save(c.Request.Context(), key, compressed, variant, mimeType); err != nil {
		h.logger.Error("image save failed", zap.Error(err), zap.String("key", key))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save_failed"})
		return
	}

	handle, err := h.images.DisplayHandle(c.Request.Context(), key, variant)
	if err != nil || handle == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save_failed"})
		return
	}
	c.JSON(http.StatusCreated, handle)
}

func (h *httpHandler) handleImageGet(c *gin.Context) {
	variant, err := images.ParseVariant(c.Query("variant"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_variant"})
		return
	}
	image, err := h.images.Get(c.Request.Context(), c.Param("key"), variant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}
	if image == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	mimeType := image.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Data(http.StatusOK, mimeType, image.Blob)
}

func (h *httpHandler) handleImageDelete(c *gin.Context) {
	if err := h.images.Delete(c.Request.Context(), c.Param("key")); err != nil {
		h.logger.Error("image delete failed", zap.Error(err), zap.String("key", c.Param("key")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
