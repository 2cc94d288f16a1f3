package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"organizer/internal/database"
	"organizer/internal/export"
	"organizer/internal/quotes"
	"organizer/internal/records"
	"organizer/internal/settings"
	"organizer/internal/streak"
)

type recordRequestPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *httpHandler) handleRecordsList(c *gin.Context) {
	filter := records.Filter{
		Search: c.Query("q"),
		FromMs: queryInt64(c, "from"),
		ToMs:   queryInt64(c, "to"),
	}
	items, err := h.records.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": items})
}

func (h *httpHandler) handleRecordCreate(c *gin.Context) {
	var request recordRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	record, err := h.records.Add(c.Request.Context(), request.Title, request.Content)
	if err != nil {
		h.logger.Error("record create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *httpHandler) handleRecordUpdate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var request recordRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	record := records.Record{ID: id, Title: request.Title, Content: request.Content}
	if err := h.records.Update(c.Request.Context(), record); err != nil {
		h.logger.Error("record update failed", zap.Error(err), zap.Uint("record_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleRecordDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.records.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("record delete failed", zap.Error(err), zap.Uint("record_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleRecordsExport(c *gin.Context) {
	items, err := h.records.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export_failed"})
		return
	}
	payload, err := export.RecordsJSON(items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export_failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="records.json"`)
	c.Data(http.StatusOK, "application/json", payload)
}

func (h *httpHandler) handleStreakGet(c *gin.Context) {
	current, err := h.streak.Current(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}
	checkedIn, err := h.streak.HasCheckedInToday(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": current, "checkedInToday": checkedIn})
}

func (h *httpHandler) handleStreakCheckIn(c *gin.Context) {
	current, err := h.streak.CheckIn(c.Request.Context())
	if errors.Is(err, streak.ErrAlreadyCheckedIn) {
		c.JSON(http.StatusConflict, gin.H{"error": "already_checked_in", "streak": current})
		return
	}
	if err != nil {
		h.logger.Error("streak check-in failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "check_in_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": current})
}

func (h *httpHandler) handleQuoteGet(c *gin.Context) {
	quote, err := h.quotes.Active(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}
	if quote == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *httpHandler) handleQuoteSave(c *gin.Context) {
	var quote quotes.Quote
	if err := c.ShouldBindJSON(&quote); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if _, err := quotes.ParseRotateMode(string(quote.RotateMode)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_rotate_mode"})
		return
	}
	saved, err := h.quotes.Save(c.Request.Context(), quote)
	if err != nil {
		h.logger.Error("quote save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save_failed"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *httpHandler) handleQuoteRotate(c *gin.Context) {
	quote, err := h.quotes.Rotate(c.Request.Context())
	if err != nil {
		h.logger.Error("quote rotate failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rotate_failed"})
		return
	}
	if quote == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *httpHandler) handleSettingsList(c *gin.Context) {
	theme, err := h.settings.Theme(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}
	accent, err := h.settings.AccentColor(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}
	font, err := h.settings.FontFamily(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		settings.KeyTheme:  theme,
		settings.KeyAccent: accent,
		settings.KeyFont:   font,
	})
}

type settingRequestPayload struct {
	Value string `json:"value"`
}

func (h *httpHandler) handleSettingSet(c *gin.Context) {
	var request settingRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := h.settings.Set(c.Request.Context(), c.Param("key"), request.Value); err != nil {
		if errors.Is(err, settings.ErrEmptyKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty_key"})
			return
		}
		h.logger.Error("setting write failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "set_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleReset(c *gin.Context) {
	if err := database.Reset(c.Request.Context(), h.db); err != nil {
		h.logger.Error("data reset failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset_failed"})
		return
	}
	h.logger.Info("all data erased")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func queryInt64(c *gin.Context, name string) int64 {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
