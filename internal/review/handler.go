// Package review implements the asynchronous continuity review task: it
// moves a submitted chapter to published or rejected-draft based on the
// judge's verdict, and guarantees the chapter is never left locked.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justinrutledge1992/feathertree/internal/ancestry"
	"github.com/justinrutledge1992/feathertree/internal/judge"
	"github.com/justinrutledge1992/feathertree/internal/messaging"
	"github.com/justinrutledge1992/feathertree/internal/models"
	"github.com/justinrutledge1992/feathertree/internal/repository"
)

// failedReviewScore is the sentinel stored when a review cannot produce a
// real verdict.
const failedReviewScore = 0

// Valid rubric range. The parser accepts any integer; the orchestrator
// rejects values the rubric cannot have produced instead of comparing them
// against the publish threshold.
const (
	minValidScore = 1
	maxValidScore = 5
)

// TaskHandler processes one review task per invocation. Steps are strictly
// sequential: reconstruct ancestor text, build the prompt, call the judge,
// parse the verdict, persist the outcome.
type TaskHandler struct {
	chapters         repository.ChapterRepository
	stories          repository.StoryRepository
	reconstructor    *ancestry.Reconstructor
	judgeClient      judge.Client
	publishThreshold int
	logger           *zap.Logger
}

// NewTaskHandler creates a review task handler.
func NewTaskHandler(
	chapters repository.ChapterRepository,
	stories repository.StoryRepository,
	reconstructor *ancestry.Reconstructor,
	judgeClient judge.Client,
	publishThreshold int,
	logger *zap.Logger,
) *TaskHandler {
	return &TaskHandler{
		chapters:         chapters,
		stories:          stories,
		reconstructor:    reconstructor,
		judgeClient:      judgeClient,
		publishThreshold: publishThreshold,
		logger:           logger.Named("ReviewTaskHandler"),
	}
}

// Handle runs one review task to a terminal state. A nil return means the
// message may be acked; a non-nil return means the outcome could not be
// persisted and the message should be dead-lettered. Re-delivery is safe:
// the task has no side effect beyond overwriting the chapter's review
// fields and, on publish, the story timestamp.
func (h *TaskHandler) Handle(ctx context.Context, payload messaging.ReviewTaskPayload) error {
	metricsIncrementReceived()
	taskStart := time.Now()
	defer func() {
		metricsRecordTaskDuration(time.Since(taskStart))
	}()

	log := h.logger.With(
		zap.String("taskID", payload.TaskID),
		zap.String("chapterID", payload.ChapterID))
	log.Info("Processing review task")

	chapterID, err := uuid.Parse(payload.ChapterID)
	if err != nil {
		// Nothing to unlock: the message cannot identify a chapter.
		log.Error("Invalid chapter ID in review task", zap.Error(err))
		metricsIncrementFailed("invalid_payload")
		return fmt.Errorf("invalid chapter ID %q: %w", payload.ChapterID, err)
	}

	chapter, err := h.chapters.GetByID(ctx, chapterID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// The chapter was deleted between submission and review.
			// Ack instead of poisoning the queue.
			log.Warn("Chapter not found, dropping review task")
			metricsIncrementFailed("chapter_not_found")
			return nil
		}
		metricsIncrementFailed("storage_error")
		return fmt.Errorf("failed to load chapter for review: %w", err)
	}

	// Step 1: reconstruct the prior narrative.
	previousText, err := h.reconstructor.PreviousText(ctx, chapter)
	if err != nil {
		if errors.Is(err, ancestry.ErrMalformedAncestry) {
			log.Error("Ancestry reconstruction failed", zap.Error(err))
			return h.failReview(ctx, log, chapter, "malformed_ancestry",
				"Review could not run: the chapter's ancestry chain is malformed.")
		}
		metricsIncrementFailed("storage_error")
		return fmt.Errorf("failed to reconstruct ancestor text: %w", err)
	}

	// Step 2: build the evaluation prompt and payload.
	prompt := judge.BuildContinuityPrompt(previousText, chapter.Content, judge.DefaultCriteria, judge.DefaultRubric)
	requestPayload := judge.NewPayload(prompt)
	if tokens := judge.CountTokens(prompt); tokens > 0 {
		metricsAddPromptTokens(tokens)
	}

	// Step 3: call the judge. This is the task's only suspension point.
	judgeStart := time.Now()
	rawResponse, err := h.judgeClient.Score(ctx, requestPayload)
	if err != nil {
		metricsRecordJudgeRequest("error", time.Since(judgeStart))
		reason, message := classifyJudgeFailure(err)
		log.Error("Judge call failed", zap.Error(err), zap.String("reason", reason))
		return h.failReview(ctx, log, chapter, reason, message)
	}
	metricsRecordJudgeRequest("success", time.Since(judgeStart))

	// Step 4: parse the verdict.
	score, feedback, err := judge.ParseVerdict(rawResponse)
	if err != nil {
		reason := classifyParseFailure(err)
		log.Error("Judge response could not be parsed",
			zap.Error(err),
			zap.String("reason", reason),
			zap.Int("responseLength", len(rawResponse)))
		return h.failReview(ctx, log, chapter, reason,
			"Review could not be completed: the judge's response was not in the expected format.")
	}

	if score < minValidScore || score > maxValidScore {
		log.Error("Judge returned out-of-range score", zap.Int("score", score))
		return h.failReview(ctx, log, chapter, "score_out_of_range",
			fmt.Sprintf("Review could not be completed: the judge returned score %d, outside the 1-5 rubric.", score))
	}

	// Step 5: apply the publish threshold policy and persist exactly once.
	publish := score > h.publishThreshold
	now := time.Now()
	if err := h.chapters.SaveReviewOutcome(ctx, chapter.ID, score, feedback, !publish, now); err != nil {
		metricsIncrementFailed("save_error")
		return fmt.Errorf("failed to save review outcome: %w", err)
	}

	if publish {
		metricsIncrementPublished()
		if err := h.stories.TouchLastUpdated(ctx, chapter.StoryID, now); err != nil {
			// The chapter is already unlocked and published; surface the
			// inconsistency rather than hiding it.
			metricsIncrementFailed("story_touch_error")
			return fmt.Errorf("chapter published but story timestamp update failed: %w", err)
		}
	} else {
		metricsIncrementRejected()
	}

	metricsIncrementSucceeded()
	log.Info("Review completed",
		zap.Int("score", score),
		zap.Bool("published", publish),
		zap.Duration("elapsed", time.Since(taskStart)))
	return nil
}

// failReview moves the chapter to the ReviewFailed terminal state: score 0,
// operator-facing diagnostic feedback, kept as a draft, and the
// submitted_for_review lock always cleared. Only a persistence failure here
// propagates to the caller.
func (h *TaskHandler) failReview(ctx context.Context, log *zap.Logger, chapter *models.Chapter, reason, message string) error {
	metricsIncrementFailed(reason)
	if err := h.chapters.SaveReviewOutcome(ctx, chapter.ID, failedReviewScore, message, true, time.Now()); err != nil {
		metricsIncrementFailed("save_error")
		return fmt.Errorf("review failed (%s) and outcome could not be saved: %w", reason, err)
	}
	log.Info("Review marked as failed", zap.String("reason", reason))
	return nil
}

// classifyJudgeFailure maps the judge client's error taxonomy onto a metric
// label and an operator-facing feedback message.
func classifyJudgeFailure(err error) (reason, message string) {
	var upstreamErr *judge.UpstreamError
	switch {
	case errors.Is(err, judge.ErrTimeout):
		return "judge_timeout", "Review could not be completed: the judge did not respond in time."
	case errors.Is(err, judge.ErrTransport):
		return "judge_unreachable", "Review could not be completed: the judge service was unreachable."
	case errors.As(err, &upstreamErr):
		return "judge_upstream_error",
			fmt.Sprintf("Review could not be completed: the judge service returned status %d.", upstreamErr.StatusCode)
	case errors.Is(err, judge.ErrMalformedUpstreamResponse):
		return "judge_malformed_response", "Review could not be completed: the judge returned an unusable response."
	default:
		return "judge_error", "Review could not be completed: the judge call failed."
	}
}

// classifyParseFailure maps parser errors onto metric labels.
func classifyParseFailure(err error) string {
	switch {
	case errors.Is(err, judge.ErrMissingFeedbackBlock):
		return "missing_feedback_block"
	case errors.Is(err, judge.ErrMissingScoreBlock):
		return "missing_score_block"
	case errors.Is(err, judge.ErrInvalidScoreFormat):
		return "invalid_score_format"
	default:
		return "parse_error"
	}
}
