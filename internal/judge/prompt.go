// Package judge talks to the external continuity scoring model: it builds
// the evaluation prompt, performs the network call, and parses the verdict.
package judge

import "fmt"

// DefaultCriteria is the continuity evaluation criteria embedded in every
// prompt.
const DefaultCriteria = "Evaluate how well the current text continues the story from the previous text. " +
	"Focus on tone, theme, narrative flow, and logical coherence. "

// DefaultRubric is the fixed 1-5 scoring scale description embedded in every
// prompt.
const DefaultRubric = `
- Score 1: No continuity. Very different in theme, tone, and content. New elements do not make sense in the context of the story.
- Score 2: Poor continuity. Somewhat different in theme, tone, and content. New elements do not make sense in the context of the story.
- Score 3: Some continuity. Somewhat aligned and somewhat different in theme, tone, and content. New elements make sense in the context of the story.
- Score 4: Good continuity. Aligned in theme, tone, and content. New elements make sense in the context of the story.
- Score 5: Excellent continuity. Very aligned in theme, tone, and content. New elements make sense in the context of the story.
`

// Fixed generation controls for the scoring request. These are part of the
// evaluation contract, not per-call tunables.
const (
	requestMaxTokens   = 512
	requestTemperature = 0.1
	requestTopP        = 0.95
	requestTopK        = 40
)

const promptTemplate = `
# GOAL
Your job is to evaluate how well a story continues from one passage to the next.

You will be provided with:
1. A previous section of story text ("previous text")
2. A new continuation written after it ("current text")
3. Continuity evaluation criteria
4. A scoring rubric (1–5)

Your task is to evaluate the continuity between previous text and current text.

# PREVIOUS TEXT
<previous_text>
%s
</previous_text>

# CURRENT TEXT
<current_text>
%s
</current_text>

# CONTINUITY EVALUATION CRITERIA
<evaluation_criteria>
%s
</evaluation_criteria>

# CONTINUITY SCORING RUBRIC
<scoring_rubric>
%s
</scoring_rubric>

# INSTRUCTIONS FOR THE EVALUATION
1. Compare the current text to the previous text.
2. Evaluate continuity in theme, tone, narrative flow, logic, and character consistency.
3. Identify whether new elements introduced in the current text make sense within the story.
4. Identify any breaks in logic, tone, or narrative structure.
5. Use the scoring rubric to determine the appropriate score.
6. Justify your evaluation with specific references to both passages.

## FORMAT FOR THE EVALUATION
- Write verbal feedback inside <feedback> tags without any surrounding text.
- Write the numeric score inside <score> tags, without any surrounding text and always after the feedback.

Please evaluate the story continuation accurately.
`

// BuildContinuityPrompt renders the fixed evaluation template. Both passages
// are embedded verbatim, never truncated; the function is pure and
// deterministic.
func BuildContinuityPrompt(previousText, currentText, criteria, rubric string) string {
	return fmt.Sprintf(promptTemplate, previousText, currentText, criteria, rubric)
}

// Payload is the request body for the scoring endpoint.
type Payload struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k"`
}

// NewPayload wraps a prompt with the fixed generation controls.
func NewPayload(prompt string) Payload {
	return Payload{
		Prompt:      prompt,
		MaxTokens:   requestMaxTokens,
		Temperature: requestTemperature,
		TopP:        requestTopP,
		TopK:        requestTopK,
	}
}
