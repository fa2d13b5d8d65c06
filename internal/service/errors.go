package service

import "errors"

// Errors specific to the authoring workflow.
var (
	// ErrChapterLocked means the chapter has an outstanding review and
	// cannot be edited or re-submitted until the review completes.
	ErrChapterLocked = errors.New("chapter is awaiting review and cannot be modified")
	// ErrChapterPublished means the chapter is no longer a draft.
	ErrChapterPublished = errors.New("chapter is already published")
	// ErrEmptyContent means the chapter body is missing.
	ErrEmptyContent = errors.New("chapter content is required")
)
