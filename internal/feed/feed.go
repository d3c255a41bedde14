// Package feed publishes engine events to NATS for downstream consumers
// (reporting dashboards, takedown tooling). The publisher is an optional
// collaborator: the engine runs fine without it.
package feed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectIntelCaptured = "vigil.intel.captured"
	SubjectTurnCompleted = "vigil.turn.completed"
	SubjectSessionReset  = "vigil.session.reset"
)

// IntelCaptured is emitted once per accepted ledger entry.
type IntelCaptured struct {
	SessionID string `json:"session_id"`
	Category  string `json:"category"`
	Value     string `json:"value"`
	Source    string `json:"source"`
}

// TurnCompleted is emitted after every applied turn.
type TurnCompleted struct {
	SessionID  string  `json:"session_id"`
	Kind       string  `json:"kind"`
	LatencyMs  int     `json:"latency_ms,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// SessionReset is emitted when a session is purged.
type SessionReset struct {
	SessionID string `json:"session_id"`
	Messages  int    `json:"messages"`
	Intel     int    `json:"intel"`
}

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func Connect(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: nc, logger: logger}, nil
}

func (p *Publisher) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return p.conn.Publish(subject, payload)
}

func (p *Publisher) Close() {
	p.conn.Close()
}
