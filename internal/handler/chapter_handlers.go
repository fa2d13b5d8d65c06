package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// getChapter returns a chapter with its continuations. Draft continuations
// are hidden unless ?drafts=true is set.
func (h *StoryHandler) getChapter(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid chapter ID format in getChapter", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid chapter ID format"})
		return
	}

	includeDrafts := false
	if draftsStr := c.Query("drafts"); draftsStr != "" {
		includeDrafts, err = strconv.ParseBool(draftsStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, APIError{Message: "Invalid 'drafts' parameter"})
			return
		}
	}

	chapter, children, err := h.service.GetChapter(c.Request.Context(), id, includeDrafts)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}

	continuations := make([]ChapterSummary, len(children))
	for i := range children {
		continuations[i] = toChapterSummary(&children[i])
	}
	c.JSON(http.StatusOK, ChapterWithContinuations{
		Chapter:       toChapterDetail(chapter),
		Continuations: continuations,
	})
}

// createChapter branches a new draft chapter off an existing one.
func (h *StoryHandler) createChapter(c *gin.Context) {
	idStr := c.Param("id")
	previousID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid chapter ID format in createChapter", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid chapter ID format"})
		return
	}

	var req CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
		return
	}

	authorID, err := uuid.Parse(req.AuthorID)
	if err != nil {
		h.logger.Warn("Invalid author ID in createChapter", zap.String("authorId", req.AuthorID), zap.Error(err))
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid author ID format"})
		return
	}

	chapter, err := h.service.CreateChapter(c.Request.Context(), authorID, previousID, req.Title, req.Content)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}

	h.logger.Info("Chapter created",
		zap.String("chapterID", chapter.ID.String()),
		zap.String("previousChapterID", previousID.String()),
		zap.Int("ordinal", chapter.Ordinal))

	c.JSON(http.StatusCreated, toChapterDetail(chapter))
}

// updateChapter edits a draft chapter.
func (h *StoryHandler) updateChapter(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid chapter ID format in updateChapter", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid chapter ID format"})
		return
	}

	var req UpdateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
		return
	}

	chapter, err := h.service.UpdateChapter(c.Request.Context(), id, req.Title, req.Content)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, toChapterDetail(chapter))
}

// submitForReview locks the chapter and enqueues a review task.
func (h *StoryHandler) submitForReview(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid chapter ID format in submitForReview", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid chapter ID format"})
		return
	}

	taskID, err := h.service.SubmitForReview(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, SubmitResponse{TaskID: taskID})
}
