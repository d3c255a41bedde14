// Package transport consumes events from the realtime media gateway over a
// websocket. The gateway handles audio; this client only cares about the
// event stream riding alongside it — transcription segments, speaker
// activity, and participant membership — which it forwards to the session
// controller through the Events callbacks.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/coder/websocket"
)

// Segment is one streaming transcription update. Segments sharing an ID are
// corrections of the same utterance.
type Segment struct {
	ID                  string `json:"id"`
	Text                string `json:"text"`
	ParticipantIdentity string `json:"participantIdentity"`
}

// Events receives gateway events. Nil callbacks are skipped. Transcription
// reports local=true when the segment came from this client's own
// participant (the scammer caller, in the console setup).
type Events struct {
	Transcription     func(seg Segment, local bool)
	ActiveSpeakers    func(identities []string)
	ParticipantJoined func(identity string)
	ParticipantLeft   func(identity string)
	Disconnected      func(reason string)
}

// envelope is the gateway's JSON event frame.
type envelope struct {
	Type       string    `json:"type"`
	Segments   []Segment `json:"segments,omitempty"`
	Identities []string  `json:"identities,omitempty"`
	Identity   string    `json:"identity,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Metadata   string    `json:"metadata,omitempty"`
	Token      string    `json:"token,omitempty"`
}

type Client struct {
	url           string
	tokenValue    string
	localIdentity string
	events        Events
	logger        *slog.Logger

	conn *websocket.Conn
}

func NewClient(url, tokenValue, localIdentity string, events Events, logger *slog.Logger) *Client {
	return &Client{
		url:           url,
		tokenValue:    tokenValue,
		localIdentity: localIdentity,
		events:        events,
		logger:        logger,
	}
}

// Connect dials the gateway and joins as the local identity. A failure after
// the dial force-closes the half-open connection so no zombie
// connected-but-broken state survives; connect failures are never retried
// here.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial gateway: %w", err)
	}

	join := envelope{Type: "join", Identity: c.localIdentity, Token: c.tokenValue}
	if err := writeJSON(ctx, conn, join); err != nil {
		conn.Close(websocket.StatusInternalError, "join failed")
		return fmt.Errorf("join gateway: %w", err)
	}

	c.conn = conn
	c.logger.Info("gateway connected", "url", c.url, "identity", c.localIdentity)
	return nil
}

// Run reads events until the context is cancelled or the connection drops.
// The Disconnected callback fires exactly once on the way out.
func (c *Client) Run(ctx context.Context) error {
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	defer func() {
		if c.events.Disconnected != nil {
			c.events.Disconnected("read loop ended")
		}
	}()

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("gateway read: %w", err)
		}
		c.dispatch(data)
	}
}

func (c *Client) dispatch(data []byte) {
	var evt envelope
	if err := json.Unmarshal(data, &evt); err != nil {
		c.logger.Warn("unparseable gateway event", "error", err)
		return
	}

	switch evt.Type {
	case "transcription":
		if c.events.Transcription == nil {
			return
		}
		for _, seg := range evt.Segments {
			if seg.Text == "" {
				continue
			}
			c.events.Transcription(seg, seg.ParticipantIdentity == c.localIdentity)
		}
	case "active_speakers":
		if c.events.ActiveSpeakers != nil {
			c.events.ActiveSpeakers(evt.Identities)
		}
	case "participant_connected":
		if c.events.ParticipantJoined != nil {
			c.events.ParticipantJoined(evt.Identity)
		}
	case "participant_disconnected":
		if c.events.ParticipantLeft != nil {
			c.events.ParticipantLeft(evt.Identity)
		}
	case "disconnected":
		c.logger.Info("gateway announced disconnect", "reason", evt.Reason)
	default:
		c.logger.Debug("ignoring gateway event", "type", evt.Type)
	}
}

// UpdateMetadata pushes a metadata change (the active persona key) for the
// local participant. The engine does not interpret the value.
func (c *Client) UpdateMetadata(ctx context.Context, metadata string) error {
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	return writeJSON(ctx, c.conn, envelope{Type: "set_metadata", Metadata: metadata})
}

// Close tears the connection down.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close(websocket.StatusNormalClosure, "session ended")
		c.conn = nil
	}
}

func writeJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
