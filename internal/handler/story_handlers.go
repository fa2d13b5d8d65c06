package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultStoryListLimit = 20
	maxStoryListLimit     = 100
)

// createStory creates a story together with its opening chapter.
func (h *StoryHandler) createStory(c *gin.Context) {
	var req CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
		return
	}

	authorID, err := uuid.Parse(req.AuthorID)
	if err != nil {
		h.logger.Warn("Invalid author ID in createStory", zap.String("authorId", req.AuthorID), zap.Error(err))
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid author ID format"})
		return
	}

	story, opening, err := h.service.CreateStory(c.Request.Context(), authorID, req.Title, req.ChapterTitle, req.Content)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}

	h.logger.Info("Story created",
		zap.String("storyID", story.ID.String()),
		zap.String("authorID", authorID.String()))

	c.JSON(http.StatusCreated, StoryDetail{
		Story:   toStorySummary(story),
		Opening: toChapterDetail(opening),
	})
}

// listStories returns stories ordered by recent activity.
func (h *StoryHandler) listStories(c *gin.Context) {
	limit := defaultStoryListLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err != nil || parsedLimit <= 0 {
			c.JSON(http.StatusBadRequest, APIError{Message: "Invalid 'limit' parameter"})
			return
		}
		if parsedLimit > maxStoryListLimit {
			parsedLimit = maxStoryListLimit
		}
		limit = parsedLimit
	}

	stories, err := h.service.ListStories(c.Request.Context(), limit)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}

	summaries := make([]StorySummary, len(stories))
	for i := range stories {
		summaries[i] = toStorySummary(&stories[i])
	}
	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

// getStory returns a story with its opening chapter.
func (h *StoryHandler) getStory(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid story ID format in getStory", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid story ID format"})
		return
	}

	story, opening, err := h.service.GetStory(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, StoryDetail{
		Story:   toStorySummary(story),
		Opening: toChapterDetail(opening),
	})
}
