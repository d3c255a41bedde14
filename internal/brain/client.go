// Package brain is the HTTP client for the external conversation-agent
// service: the hosted LLM that plays the honey-pot persona and returns the
// reply, categorized intelligence, and a scam-confidence score.
package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vigil-labs/vigil/internal/extract"
)

// ErrMalformed marks a response that parsed as HTTP 200 but is unusable —
// missing reply, bad JSON, or a non-success status field. The session
// controller treats it exactly like a network failure.
var ErrMalformed = errors.New("malformed agent response")

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Message is one prior turn in the wire format the agent service expects.
type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Metadata is passed through to the agent service unchanged.
type Metadata struct {
	Persona string `json:"persona,omitempty"`
	Channel string `json:"channel,omitempty"`
	Locale  string `json:"locale,omitempty"`
}

type request struct {
	SessionID           string    `json:"sessionId"`
	Message             Message   `json:"message"`
	ConversationHistory []Message `json:"conversationHistory"`
	Metadata            Metadata  `json:"metadata"`
}

type response struct {
	Status       string              `json:"status"`
	Reply        string              `json:"reply"`
	DebugThought string              `json:"debug_thought"`
	Intelligence map[string][]string `json:"intelligence"`
	Metrics      struct {
		Confidence float64 `json:"confidence"`
	} `json:"metrics"`
}

// Turn is the consumed part of one agent round trip. Intelligence arrives
// already categorized, bypassing local extraction for the chat path.
type Turn struct {
	Reply        string
	Intelligence []extract.Candidate
	Confidence   float64
}

// Engage sends one scammer message plus history to the agent service and
// returns the agent's turn. The caller bounds the round trip through ctx.
func (c *Client) Engage(ctx context.Context, sessionID string, msg Message, history []Message, meta Metadata) (*Turn, error) {
	reqBody := request{
		SessionID:           sessionID,
		Message:             msg,
		ConversationHistory: history,
		Metadata:            meta,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/webhook", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if apiResp.Status != "success" {
		return nil, fmt.Errorf("%w: status %q", ErrMalformed, apiResp.Status)
	}
	if apiResp.Reply == "" {
		return nil, fmt.Errorf("%w: missing reply", ErrMalformed)
	}

	return &Turn{
		Reply:        apiResp.Reply,
		Intelligence: candidatesFromWire(apiResp.Intelligence),
		Confidence:   apiResp.Metrics.Confidence,
	}, nil
}

// candidatesFromWire maps the service's field names onto categories,
// skipping anything it does not recognize.
func candidatesFromWire(intel map[string][]string) []extract.Candidate {
	var out []extract.Candidate
	for key, values := range intel {
		cat, ok := extract.CategoryFromWire(key)
		if !ok {
			continue
		}
		for _, v := range values {
			out = append(out, extract.Candidate{Category: cat, Value: v})
		}
	}
	return out
}
