package judge

import (
	"errors"
	"fmt"
)

// Network-layer failure taxonomy. Each condition is distinct so the caller
// can tell "judge said nothing useful" from "judge was unreachable" without
// inspecting message strings.
var (
	// ErrTimeout means the request exceeded the configured deadline.
	ErrTimeout = errors.New("judge request timed out")
	// ErrTransport means DNS, connection, or TLS failure before any
	// response arrived.
	ErrTransport = errors.New("judge unreachable")
	// ErrMalformedUpstreamResponse means the judge answered 2xx but the
	// body lacked the expected text field.
	ErrMalformedUpstreamResponse = errors.New("judge response missing text field")
)

// UpstreamError is returned when the judge answers with a non-2xx status.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("judge returned status %d: %s", e.StatusCode, e.Body)
}

// Parse failure taxonomy for the judge's semi-structured verdict.
var (
	ErrMissingFeedbackBlock = errors.New("no <feedback> block in judge response")
	ErrMissingScoreBlock    = errors.New("no <score> block in judge response")
	ErrInvalidScoreFormat   = errors.New("score block does not contain an integer")
)
