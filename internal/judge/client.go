package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Client is the interface to the continuity judge. Score performs one
// evaluation round-trip and returns the judge's raw natural-language output.
type Client interface {
	Score(ctx context.Context, payload Payload) (string, error)
}

// Config carries the externally supplied judge settings. Nothing here is
// hardcoded in the pipeline logic.
type Config struct {
	ModelID    string
	APIRoot    string // e.g. "api.baseten.co"
	Deployment string // "development" or "production"
	APIKey     string
	Timeout    time.Duration
}

// httpClient implements Client against the remote scoring endpoint.
type httpClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPClient creates a Client for the configured scoring deployment.
func NewHTTPClient(cfg Config, logger *zap.Logger) (Client, error) {
	if cfg.ModelID == "" {
		return nil, errors.New("judge model ID is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("judge API key is required")
	}
	if cfg.APIRoot == "" {
		cfg.APIRoot = "api.baseten.co"
	}
	if cfg.Deployment == "" {
		cfg.Deployment = "production"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &httpClient{
		endpoint: fmt.Sprintf("https://model-%s.%s/%s/predict", cfg.ModelID, cfg.APIRoot, cfg.Deployment),
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger.Named("JudgeClient"),
	}, nil
}

// predictResponse is the expected shape of a successful judge reply.
type predictResponse struct {
	Text *string `json:"text"`
}

// Score POSTs the payload to the scoring endpoint and returns the raw
// response text. Failures map onto the package's error taxonomy; no partial
// value is ever returned alongside an error.
func (c *httpClient) Score(ctx context.Context, payload Payload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal judge payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build judge request: %w", err)
	}
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("Judge call timed out", zap.Duration("elapsed", time.Since(start)))
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		c.logger.Warn("Judge call transport failure", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Judge returned error status",
			zap.Int("status", resp.StatusCode),
			zap.Int("bodyLength", len(respBody)))
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: truncateForError(respBody)}
	}

	var parsed predictResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedUpstreamResponse, err)
	}
	if parsed.Text == nil {
		return "", ErrMalformedUpstreamResponse
	}

	c.logger.Debug("Judge call succeeded",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("responseLength", len(*parsed.Text)))
	return *parsed.Text, nil
}

// isTimeout distinguishes deadline expiry from other transport failures.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// truncateForError keeps upstream error bodies short enough for logs and
// operator-facing feedback.
func truncateForError(body []byte) string {
	const maxLen = 512
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
