// Package ancestry reconstructs the linear prior narrative for a chapter in
// the branching chapter tree.
package ancestry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justinrutledge1992/feathertree/internal/models"
	"github.com/justinrutledge1992/feathertree/internal/repository"
)

// ErrMalformedAncestry indicates a cyclic or over-deep previous_chapter
// chain. The store does not enforce acyclicity, so the traversal carries
// its own bound.
var ErrMalformedAncestry = errors.New("malformed chapter ancestry: cycle or excessive depth in previous_chapter chain")

// MaxDepth bounds the parent-chain walk. Chains are expected to stay far
// below this; hitting the bound is treated the same as a cycle.
const MaxDepth = 256

// Reconstructor walks a chapter's single-parent back-link chain and
// assembles the prior narrative text, oldest chapter first.
type Reconstructor struct {
	chapters repository.ChapterRepository
	logger   *zap.Logger
}

// NewReconstructor creates a Reconstructor over the given chapter storage.
func NewReconstructor(chapters repository.ChapterRepository, logger *zap.Logger) *Reconstructor {
	return &Reconstructor{
		chapters: chapters,
		logger:   logger.Named("AncestryReconstructor"),
	}
}

// PreviousText returns the concatenated content of every ancestor of the
// given chapter, root first, each followed by a newline. The chapter's own
// content is excluded; a root chapter yields an empty string.
func (r *Reconstructor) PreviousText(ctx context.Context, chapter *models.Chapter) (string, error) {
	visited := map[uuid.UUID]struct{}{chapter.ID: {}}

	var parts []string // immediate parent first, root last
	current := chapter
	for depth := 0; current.PreviousChapterID != nil; depth++ {
		if depth >= MaxDepth {
			r.logger.Error("Ancestry walk exceeded depth bound",
				zap.String("chapterID", chapter.ID.String()),
				zap.Int("maxDepth", MaxDepth))
			return "", ErrMalformedAncestry
		}

		parentID := *current.PreviousChapterID
		if _, seen := visited[parentID]; seen {
			r.logger.Error("Cycle detected in previous_chapter chain",
				zap.String("chapterID", chapter.ID.String()),
				zap.String("repeatedID", parentID.String()))
			return "", ErrMalformedAncestry
		}
		visited[parentID] = struct{}{}

		parent, err := r.chapters.GetByID(ctx, parentID)
		if err != nil {
			return "", fmt.Errorf("failed to load ancestor chapter %s: %w", parentID, err)
		}
		parts = append(parts, parent.Content)
		current = parent
	}

	if len(parts) == 0 {
		return "", nil
	}

	// Prepend order: reverse so the final string reads oldest first.
	var sb strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		sb.WriteString(parts[i])
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
