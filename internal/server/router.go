// Package server exposes the organizer engines over a local HTTP API.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"organizer/internal/images"
	"organizer/internal/labels"
	"organizer/internal/notes"
	"organizer/internal/quotes"
	"organizer/internal/records"
	"organizer/internal/routines"
	"organizer/internal/settings"
	"organizer/internal/streak"
)

var (
	errMissingDatabase        = errors.New("database dependency required")
	errMissingNotesService    = errors.New("notes service dependency required")
	errMissingLabelsService   = errors.New("labels service dependency required")
	errMissingRoutinesService = errors.New("routines service dependency required")
	errMissingRecordsService  = errors.New("records service dependency required")
	errMissingStreakService   = errors.New("streak service dependency required")
	errMissingQuotesService   = errors.New("quotes service dependency required")
	errMissingImagesService   = errors.New("images service dependency required")
	errMissingSettingsService = errors.New("settings service dependency required")
)

// Dependencies carries every engine the HTTP surface fronts. Compressor
// is optional; uploads pass through unchanged when it is nil.
type Dependencies struct {
	Database        *gorm.DB
	NotesService    *notes.Service
	LabelsService   *labels.Service
	RoutinesService *routines.Service
	RecordsService  *records.Service
	StreakService   *streak.Service
	QuotesService   *quotes.Service
	ImagesService   *images.Service
	SettingsService *settings.Service
	Compressor      images.Compressor
	Logger          *zap.Logger
}

// NewHTTPHandler validates the dependencies and builds the router.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Database == nil {
		return nil, errMissingDatabase
	}
	if deps.NotesService == nil {
		return nil, errMissingNotesService
	}
	if deps.LabelsService == nil {
		return nil, errMissingLabelsService
	}
	if deps.RoutinesService == nil {
		return nil, errMissingRoutinesService
	}
	if deps.RecordsService == nil {
		return nil, errMissingRecordsService
	}
	if deps.StreakService == nil {
		return nil, errMissingStreakService
	}
	if deps.QuotesService == nil {
		return nil, errMissingQuotesService
	}
	if deps.ImagesService == nil {
		return nil, errMissingImagesService
	}
	if deps.SettingsService == nil {
		return nil, errMissingSettingsService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	compressor := deps.Compressor
	if compressor == nil {
		compressor = images.NopCompressor{}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		db:         deps.Database,
		notes:      deps.NotesService,
		labels:     deps.LabelsService,
		routines:   deps.RoutinesService,
		records:    deps.RecordsService,
		streak:     deps.StreakService,
		quotes:     deps.QuotesService,
		images:     deps.ImagesService,
		settings:   deps.SettingsService,
		compressor: compressor,
		logger:     logger,
	}

	router.GET("/healthz", handler.handleHealth)

	api := router.Group("/api")

	api.GET("/notes", handler.handleNotesList)
	api.POST("/notes", handler.handleNoteCreate)
	api.GET("/notes/export", handler.handleNotesExport)
	api.POST("/notes/import", handler.handleNotesImport)
	api.POST("/notes/bulk", handler.handleNotesBulk)
	api.POST("/notes/trash/empty", handler.handleEmptyTrash)
	api.GET("/notes/:id", handler.handleNoteGet)
	api.PUT("/notes/:id", handler.handleNoteUpdate)
	api.DELETE("/notes/:id", handler.handleNoteDelete)
	api.POST("/notes/:id/trash", handler.handleNoteTrash)
	api.POST("/notes/:id/archive", handler.handleNoteArchive)
	api.POST("/notes/:id/restore", handler.handleNoteRestore)
	api.POST("/notes/:id/pin", handler.handleNotePin)
	api.GET("/notes/:id/export", handler.handleNoteExport)

	api.GET("/labels", handler.handleLabelsList)
	api.POST("/labels", handler.handleLabelCreate)
	api.PUT("/labels/:id", handler.handleLabelRename)
	api.DELETE("/labels/:id", handler.handleLabelDelete)

	api.GET("/routines/today", handler.handleRoutineToday)
	api.GET("/routines/export", handler.handleRoutinesExport)
	api.POST("/routines/import", handler.handleRoutinesImport)
	api.GET("/routines/:profile", handler.handleRoutineGet)
	api.POST("/routines/:profile/items", handler.handleRoutineItemAdd)
	api.PUT("/routines/:profile/items/:itemId", handler.handleRoutineItemUpdate)
	api.DELETE("/routines/:profile/items/:itemId", handler.handleRoutineItemDelete)
	api.POST("/routines/:profile/items/:itemId/toggle", handler.handleRoutineItemToggle)
	api.POST("/routines/:profile/reorder", handler.handleRoutineReorder)

	api.GET("/records", handler.handleRecordsList)
	api.POST("/records", handler.handleRecordCreate)
	api.GET("/records/export", handler.handleRecordsExport)
	api.PUT("/records/:id", handler.handleRecordUpdate)
	api.DELETE("/records/:id", handler.handleRecordDelete)

	api.GET("/streak", handler.handleStreakGet)
	api.POST("/streak/check-in", handler.handleStreakCheckIn)

	api.GET("/quote", handler.handleQuoteGet)
	api.PUT("/quote", handler.handleQuoteSave)
	api.POST("/quote/rotate", handler.handleQuoteRotate)

	api.POST("/images", handler.handleImageUpload)
	api.GET("/images/:key", handler.handleImageGet)
	api.DELETE("/images/:key", handler.handleImageDelete)

	api.GET("/settings", handler.handleSettingsList)
	api.PUT("/settings/:key", handler.handleSettingSet)

	api.POST("/reset", handler.handleReset)

	return router, nil
}

type httpHandler struct {
	db         *gorm.DB
	notes      *notes.Service
	labels     *labels.Service
	routines   *routines.Service
	records    *records.Service
	streak     *streak.Service
	quotes     *quotes.Service
	images     *images.Service
	settings   *settings.Service
	compressor images.Compressor
	logger     *zap.Logger
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
