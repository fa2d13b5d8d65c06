package judge

import (
	"context"
	"fmt"
)

// staticClient is the configuration-selected test double: it answers every
// evaluation with a fixed verdict, formatted exactly like a real judge
// response so the parsing path stays exercised.
type staticClient struct {
	score    int
	feedback string
}

// NewStatic creates a judge double with a fixed score and feedback. Selected
// via configuration (JUDGE_MOCK) for local development and demos.
func NewStatic(score int, feedback string) Client {
	return &staticClient{score: score, feedback: feedback}
}

func (c *staticClient) Score(_ context.Context, _ Payload) (string, error) {
	return fmt.Sprintf("<feedback>%s</feedback>\n<score>%d</score>", c.feedback, c.score), nil
}
