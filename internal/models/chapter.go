package models

import (
	"time"

	"github.com/google/uuid"
)

// Chapter is a single node of authored text within a story. Chapters form a
// forest of trees: each chapter points back to at most one previous chapter,
// and many chapters may share the same parent (branching continuations).
type Chapter struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	StoryID            uuid.UUID  `db:"story_id" json:"storyId"`
	AuthorID           uuid.UUID  `db:"author_id" json:"authorId"`
	Ordinal            int        `db:"ordinal" json:"ordinal"` // 0 = undefined, 1 = first chapter of a story
	Title              string     `db:"title" json:"title,omitempty"`
	Content            string     `db:"content" json:"content"`
	Draft              bool       `db:"draft" json:"draft"`
	SubmittedForReview bool       `db:"submitted_for_review" json:"submittedForReview"`
	Score              *int       `db:"score" json:"score,omitempty"`
	Feedback           *string    `db:"feedback" json:"feedback,omitempty"`
	PreviousChapterID  *uuid.UUID `db:"previous_chapter_id" json:"previousChapterId,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
}

// IsRoot reports whether the chapter opens a story (no previous chapter).
func (c *Chapter) IsRoot() bool {
	return c.PreviousChapterID == nil
}

// Editable reports whether the chapter may currently be modified by the
// authoring workflow. While a review is outstanding the chapter is locked,
// and published chapters are immutable.
func (c *Chapter) Editable() bool {
	return c.Draft && !c.SubmittedForReview
}
