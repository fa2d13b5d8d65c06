package handler

import (
	"time"

	"github.com/justinrutledge1992/feathertree/internal/models"
)

// APIError is the standardized error response body.
type APIError struct {
	Message string `json:"message"`
}

// CreateStoryRequest is the body for POST /api/stories.
type CreateStoryRequest struct {
	AuthorID     string `json:"authorId" binding:"required"`
	Title        string `json:"title" binding:"required"`
	ChapterTitle string `json:"chapterTitle" binding:"required"`
	Content      string `json:"content" binding:"required"`
}

// CreateChapterRequest is the body for POST /api/chapters/:id/continuations.
type CreateChapterRequest struct {
	AuthorID string `json:"authorId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

// UpdateChapterRequest is the body for PUT /api/chapters/:id.
type UpdateChapterRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// StorySummary is the list representation of a story.
type StorySummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	AuthorID    string    `json:"authorId"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// ChapterSummary is the list representation of a chapter continuation.
type ChapterSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	AuthorID  string    `json:"authorId"`
	Ordinal   int       `json:"ordinal"`
	Draft     bool      `json:"draft"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChapterDetail is the full representation of a chapter, including the
// latest review outcome.
type ChapterDetail struct {
	ID                 string    `json:"id"`
	StoryID            string    `json:"storyId"`
	AuthorID           string    `json:"authorId"`
	Ordinal            int       `json:"ordinal"`
	Title              string    `json:"title"`
	Content            string    `json:"content"`
	Draft              bool      `json:"draft"`
	SubmittedForReview bool      `json:"submittedForReview"`
	Score              *int      `json:"score,omitempty"`
	Feedback           *string   `json:"feedback,omitempty"`
	PreviousChapterID  *string   `json:"previousChapterId,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ChapterWithContinuations is the response for GET /api/chapters/:id.
type ChapterWithContinuations struct {
	Chapter       ChapterDetail    `json:"chapter"`
	Continuations []ChapterSummary `json:"continuations"`
}

// StoryDetail is the response for GET /api/stories/:id.
type StoryDetail struct {
	Story   StorySummary  `json:"story"`
	Opening ChapterDetail `json:"opening"`
}

// SubmitResponse is the response for POST /api/chapters/:id/submit.
type SubmitResponse struct {
	TaskID string `json:"taskId"`
}

func toStorySummary(story *models.Story) StorySummary {
	return StorySummary{
		ID:          story.ID.String(),
		Title:       story.Title,
		AuthorID:    story.AuthorID.String(),
		CreatedAt:   story.CreatedAt,
		LastUpdated: story.LastUpdated,
	}
}

func toChapterSummary(chapter *models.Chapter) ChapterSummary {
	return ChapterSummary{
		ID:        chapter.ID.String(),
		Title:     chapter.Title,
		AuthorID:  chapter.AuthorID.String(),
		Ordinal:   chapter.Ordinal,
		Draft:     chapter.Draft,
		CreatedAt: chapter.CreatedAt,
	}
}

func toChapterDetail(chapter *models.Chapter) ChapterDetail {
	detail := ChapterDetail{
		ID:                 chapter.ID.String(),
		StoryID:            chapter.StoryID.String(),
		AuthorID:           chapter.AuthorID.String(),
		Ordinal:            chapter.Ordinal,
		Title:              chapter.Title,
		Content:            chapter.Content,
		Draft:              chapter.Draft,
		SubmittedForReview: chapter.SubmittedForReview,
		Score:              chapter.Score,
		Feedback:           chapter.Feedback,
		CreatedAt:          chapter.CreatedAt,
		UpdatedAt:          chapter.UpdatedAt,
	}
	if chapter.PreviousChapterID != nil {
		prev := chapter.PreviousChapterID.String()
		detail.PreviousChapterID = &prev
	}
	return detail
}
