// Package handler exposes the authoring API over HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justinrutledge1992/feathertree/internal/models"
	"github.com/justinrutledge1992/feathertree/internal/service"
)

// StoryHandler handles HTTP requests for the authoring API.
type StoryHandler struct {
	service service.AuthoringService
	logger  *zap.Logger
}

// NewStoryHandler creates a new StoryHandler.
func NewStoryHandler(s service.AuthoringService, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{
		service: s,
		logger:  logger.Named("StoryHandler"),
	}
}

// RegisterRoutes registers the authoring API routes.
func (h *StoryHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/stories", h.createStory)
		api.GET("/stories", h.listStories)
		api.GET("/stories/:id", h.getStory)

		api.GET("/chapters/:id", h.getChapter)
		api.PUT("/chapters/:id", h.updateChapter)
		api.POST("/chapters/:id/continuations", h.createChapter)
		api.POST("/chapters/:id/submit", h.submitForReview)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func handleServiceError(c *gin.Context, err error, logger *zap.Logger) {
	var statusCode int
	var apiErr APIError

	switch {
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: "Resource not found"}
	case errors.Is(err, service.ErrChapterLocked):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, service.ErrChapterPublished):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, service.ErrEmptyContent):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
	}
	c.AbortWithStatusJSON(statusCode, apiErr)
}
