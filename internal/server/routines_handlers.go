package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"organizer/internal/export"
	"organizer/internal/routines"
)

func (h *httpHandler) handleRoutineToday(c *gin.Context) {
	profileType := h.routines.TodayProfileType()
	profile, err := h.routines.Get(c.Request.Context(), profileType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}
	if profile == nil {
		profile = &routines.Profile{ProfileType: profileType, Items: []routines.Item{}}
	}
	c.JSON(http.StatusOK, profile)
}

func (h *httpHandler) handleRoutineGet(c *gin.Context) {
	profileType, ok := pathProfileType(c)
	if !ok {
		return
	}
	profile, err := h.routines.Get(c.Request.Context(), profileType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}
	if profile == nil {
		profile = &routines.Profile{ProfileType: profileType, Items: []routines.Item{}}
	}
	c.JSON(http.StatusOK, profile)
}

func (h *httpHandler) handleRoutineItemAdd(c *gin.Context) {
	profileType, ok := pathProfileType(c)
	if !ok {
		return
	}
	var item routines.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if item.ID == "" {
		generated, err := uuid.NewV7()
		if err != nil {
			h.logger.Error("routine item id generation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "add_failed"})
			return
		}
		item.ID = generated.String()
	}
	if err := h.routines.AddItem(c.Request.Context(), profileType, item); err != nil {
		h.logger.Error("routine item add failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "add_failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

func (h *httpHandler) handleRoutineItemUpdate(c *gin.Context) {
	profileType, ok := pathProfileType(c)
	if !ok {
		return
	}
	var item routines.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	item.ID = c.Param("itemId")
	if err := h.routines.UpdateItem(c.Request.Context(), profileType, item); err != nil {
		h.logger.Error("routine item update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleRoutineItemDelete(c *gin.Context) {
	profileType, ok := pathProfileType(c)
	if !ok {
		return
	}
	if err := h.routines.DeleteItem(c.Request.Context(), profileType, c.Param("itemId")); err != nil {
		h.logger.Error("routine item delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleRoutineItemToggle(c *gin.Context) {
	profileType, ok := pathProfileType(c)
	if !ok {
		return
	}
	if err := h.routines.ToggleComplete(c.Request.Context(), profileType, c.Param("itemId")); err != nil {
		h.logger.Error("routine item toggle failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "toggle_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type reorderRequestPayload struct {
	Items []routines.Item `json:"items"`
}

func (h *httpHandler) handleRoutineReorder(c *gin.Context) {
	profileType, ok := pathProfileType(c)
	if !ok {
		return
	}
	var request reorderRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	// Renumber here so stored order always matches the submitted sequence.
	items := routines.Renumber(request.Items)
	if err := h.routines.Reorder(c.Request.Context(), profileType, items); err != nil {
		h.logger.Error("routine reorder failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reorder_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleRoutinesExport(c *gin.Context) {
	profiles := make([]routines.Profile, 0, 2)
	for _, profileType := range []routines.ProfileType{routines.ProfileWeekday, routines.ProfileWeekend} {
		profile, err := h.routines.Get(c.Request.Context(), profileType)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export_failed"})
			return
		}
		if profile != nil {
			profiles = append(profiles, *profile)
		}
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		payload, err := export.RoutinesJSON(profiles)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export_failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="routines.json"`)
		c.Data(http.StatusOK, "application/json", payload)
	case "txt":
		c.Header("Content-Disposition", `attachment; filename="routines.txt"`)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(export.RoutinesTXT(profiles)))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_format"})
	}
}

func (h *httpHandler) handleRoutinesImport(c *gin.Context) {
	filename, data, ok := uploadedFile(c)
	if !ok {
		return
	}
	profiles, err := export.ImportRoutines(filename, data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_format"})
		return
	}

	imported := 0
	for _, profile := range profiles {
		if _, err := routines.ParseProfileType(string(profile.ProfileType)); err != nil {
			continue
		}
		if err := h.routines.Replace(c.Request.Context(), profile.ProfileType, profile.Items); err != nil {
			h.logger.Error("routine import failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "import_failed"})
			return
		}
		imported++
	}
	c.JSON(http.StatusOK, gin.H{"imported": imported})
}

func pathProfileType(c *gin.Context) (routines.ProfileType, bool) {
	profileType, err := routines.ParseProfileType(c.Param("profile"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_profile"})
		return "", false
	}
	return profileType, true
}
