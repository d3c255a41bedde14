// Package callback reports final session results to an external collector
// once a session ends. Like the NATS feed, it is an optional collaborator;
// delivery failures are logged, never surfaced to the session.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// FinalResult is the wire payload for one completed session.
type FinalResult struct {
	SessionID              string              `json:"sessionId"`
	ScamDetected           bool                `json:"scamDetected"`
	TotalMessagesExchanged int                 `json:"totalMessagesExchanged"`
	ExtractedIntelligence  map[string][]string `json:"extractedIntelligence"`
	AgentNotes             string              `json:"agentNotes"`
}

type Client struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewClient(url string, logger *slog.Logger) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		logger: logger,
	}
}

// Send posts the final result. Best effort: callers fire this in the
// background and only log the returned error.
func (c *Client) Send(ctx context.Context, result FinalResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("callback post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned %d", resp.StatusCode)
	}

	c.logger.Info("final result delivered",
		"session_id", result.SessionID,
		"messages", result.TotalMessagesExchanged,
	)
	return nil
}
