// Package client calls the dialogue generation endpoint over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"nihilistkernel/internal/api"
	"nihilistkernel/internal/logging"

	"github.com/google/uuid"
)

// maxResponseBytes caps how much of a reply is read.
const maxResponseBytes = 1 << 20

// ErrMissingDialogue is returned when a 2xx reply has no dialogue field.
var ErrMissingDialogue = errors.New("response has no dialogue field")

// StatusError reports a non-2xx reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// Config configures an HTTPGenerator.
type Config struct {
	// Endpoint is the full URL of the generate route,
	// e.g. http://localhost:5000/api/generate.
	Endpoint string

	// Timeout applies when the caller's context has no deadline.
	Timeout time.Duration

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// HTTPGenerator posts the user's text to the generation endpoint.
type HTTPGenerator struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

// New creates a generator for cfg.Endpoint.
func New(cfg Config) *HTTPGenerator {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPGenerator{
		endpoint:   cfg.Endpoint,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
	}
}

// Endpoint returns the URL submissions are posted to.
func (g *HTTPGenerator) Endpoint() string { return g.endpoint }

// Generate sends userInput and returns the dialogue from the reply.
func (g *HTTPGenerator) Generate(ctx context.Context, userInput string) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	log := logging.WithRequestID(logging.CategoryAPI, requestID)
	start := time.Now()

	payload, err := json.Marshal(api.GenerateRequest{UserInput: userInput})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.HeaderRequestID, requestID)

	log.Debug("POST %s input_len=%d", g.endpoint, len(userInput))
	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed after %v: %v", time.Since(start), err)
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("endpoint returned status %d after %v", resp.StatusCode, time.Since(start))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out api.GenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Dialogue == nil {
		return "", ErrMissingDialogue
	}

	log.Info("dialogue received in %v (%d bytes)", time.Since(start), len(*out.Dialogue))
	return *out.Dialogue, nil
}
