package judge

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Tag matching is case-insensitive and blocks may span multiple lines. The
// judge's output is untrusted free text; nothing beyond the two tags is
// assumed.
var (
	feedbackBlockRe = regexp.MustCompile(`(?is)<feedback>(.*?)</feedback>`)
	scoreBlockRe    = regexp.MustCompile(`(?is)<score>(.*?)</score>`)
)

// ParseVerdict extracts the integer score and feedback string from the raw
// judge output. It is a pure function: the same input always yields the same
// result or the same failure. The score is not range-checked here; range
// policy belongs to the review orchestrator.
func ParseVerdict(raw string) (score int, feedback string, err error) {
	feedbackMatch := feedbackBlockRe.FindStringSubmatch(raw)
	if feedbackMatch == nil {
		return 0, "", ErrMissingFeedbackBlock
	}
	feedback = strings.TrimSpace(feedbackMatch[1])

	scoreMatch := scoreBlockRe.FindStringSubmatch(raw)
	if scoreMatch == nil {
		return 0, "", ErrMissingScoreBlock
	}
	scoreText := strings.TrimSpace(scoreMatch[1])

	score, convErr := strconv.Atoi(scoreText)
	if convErr != nil {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidScoreFormat, scoreText)
	}
	return score, feedback, nil
}
