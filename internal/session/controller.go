// Package session owns the live session state machine. Two independent event
// sources feed it — the realtime transcription stream and the chat channel —
// and every mutation is serialized through one mutex so message ordering,
// ledger dedup and metric increments never interleave.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vigil-labs/vigil/internal/brain"
	"github.com/vigil-labs/vigil/internal/callback"
	"github.com/vigil-labs/vigil/internal/extract"
	"github.com/vigil-labs/vigil/internal/feed"
	"github.com/vigil-labs/vigil/internal/ledger"
	"github.com/vigil-labs/vigil/internal/metrics"
	"github.com/vigil-labs/vigil/internal/persona"
	"github.com/vigil-labs/vigil/internal/transcript"
)

var (
	// ErrTurnInFlight rejects a chat submission while another is pending.
	ErrTurnInFlight = errors.New("a chat turn is already in flight")
	// ErrStaleSession marks a completion that arrived after a reset.
	ErrStaleSession = errors.New("session was reset while the turn was in flight")
	// ErrUnknownPersona rejects a persona switch to an unregistered key.
	ErrUnknownPersona = errors.New("unknown persona")
)

// placeholderReply is appended when the agent service fails or times out, so
// the conversation never stalls on a blank agent turn.
const placeholderReply = "Sorry beta, the line is bad... could you repeat that?"

// Brain is the conversation-agent collaborator.
type Brain interface {
	Engage(ctx context.Context, sessionID string, msg brain.Message, history []brain.Message, meta brain.Metadata) (*brain.Turn, error)
}

// Publisher fans accepted intel and turn events out to subscribers.
// Implemented by feed.Publisher; nil disables publishing.
type Publisher interface {
	Publish(subject string, data any) error
}

// Reporter receives the final result of a finished session. Implemented by
// callback.Client; nil disables reporting.
type Reporter interface {
	Send(ctx context.Context, result callback.FinalResult) error
}

// Config carries the controller's tuning constants.
type Config struct {
	ChatTimeout      time.Duration
	ProtocolLogLimit int
	Channel          string
	Locale           string
}

func DefaultConfig() Config {
	return Config{
		ChatTimeout:      15 * time.Second,
		ProtocolLogLimit: 10,
		Channel:          "call",
		Locale:           "IN",
	}
}

// Snapshot is the full externally visible session state.
type Snapshot struct {
	SessionID    string               `json:"session_id"`
	State        string               `json:"state"`
	Persona      string               `json:"persona"`
	Generation   uint64               `json:"generation"`
	Messages     []transcript.Message `json:"messages"`
	Intelligence map[string][]string  `json:"intelligence"`
	Metrics      metrics.Metrics      `json:"metrics"`
	Events       []string             `json:"events"`
	StartTime    time.Time            `json:"start_time"`
}

// Controller sequences events from the voice stream and the chat channel
// into the reconciler, extractor, ledger and metrics engine. All state behind
// the mutex belongs to exactly one live session; Reset swaps it wholesale.
type Controller struct {
	brain     Brain
	publisher Publisher
	reporter  Reporter
	extractor *extract.Extractor
	engine    *metrics.Engine
	cfg       Config
	logger    *slog.Logger

	now func() time.Time

	mu         sync.Mutex
	id         string
	log        *transcript.Log
	ledger     *ledger.Ledger
	mtx        metrics.Metrics
	startTime  time.Time
	generation uint64
	inFlight   bool
	persona    string
	events     []string
}

func NewController(b Brain, engine *metrics.Engine, logger *slog.Logger) *Controller {
	return NewControllerWithConfig(DefaultConfig(), b, engine, logger)
}

func NewControllerWithConfig(cfg Config, b Brain, engine *metrics.Engine, logger *slog.Logger) *Controller {
	c := &Controller{
		brain:     b,
		extractor: extract.New(),
		engine:    engine,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		log:       transcript.NewLog(),
		ledger:    ledger.New(),
		persona:   persona.DefaultKey,
	}
	c.id = uuid.NewString()
	c.startTime = c.now()
	return c
}

// SetPublisher attaches an optional intel feed.
func (c *Controller) SetPublisher(p Publisher) { c.publisher = p }

// SetReporter attaches an optional final-result reporter.
func (c *Controller) SetReporter(r Reporter) { c.reporter = r }

// HandleVoiceSegment applies one transcription segment. Scammer segments that
// change the log run extraction and feed the ledger and metrics; agent
// segments only update the transcript.
func (c *Controller) HandleVoiceSegment(segmentID string, role transcript.Role, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := c.log.Upsert(segmentID, role, text, c.now(), transcript.SourceVoice)
	if !changed || role != transcript.RoleScammer {
		return
	}

	accepted := c.ledger.Add(c.extractor.Extract(text))
	c.engine.VoiceScammerTurn(&c.mtx)
	c.recordAccepted(accepted, "voice")

	if score, reasons := extract.ScamScore(text); score >= 0.5 {
		c.note(fmt.Sprintf("scam signals (%.0f%%): %s", score*100, strings.Join(reasons, ", ")))
	}
	c.publish(feed.SubjectTurnCompleted, feed.TurnCompleted{
		SessionID: c.id,
		Kind:      "voice",
	})
}

// HandleChatTurn runs one full chat round trip: append the scammer message,
// call the agent service, and apply the reply. At most one turn may be in
// flight; a second submission is rejected with ErrTurnInFlight. Agent
// failures (network, timeout, malformed reply) append a placeholder message
// and mutate nothing else. A completion that lands after Reset is discarded.
func (c *Controller) HandleChatTurn(ctx context.Context, text string) (string, int, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return "", 0, ErrTurnInFlight
	}
	gen := c.generation
	sessionID := c.id
	activePersona := c.persona
	history := c.history()
	c.log.Upsert("", transcript.RoleScammer, text, c.now(), transcript.SourceText)
	c.inFlight = true
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ChatTimeout)
	defer cancel()

	started := c.now()
	turn, err := c.brain.Engage(ctx, sessionID, brain.Message{Sender: "scammer", Text: text}, history, brain.Metadata{
		Persona: activePersona,
		Channel: c.cfg.Channel,
		Locale:  c.cfg.Locale,
	})
	latencyMs := int(c.now().Sub(started).Milliseconds())

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		// The session this turn belonged to is gone. Leave the new
		// session untouched, including its inFlight gate.
		c.logger.Info("discarding stale chat completion", "generation", gen)
		return "", 0, ErrStaleSession
	}
	c.inFlight = false

	if err != nil {
		c.log.Upsert("", transcript.RoleAgent, placeholderReply, c.now(), transcript.SourceText)
		c.note("agent turn failed: " + err.Error())
		return "", 0, fmt.Errorf("agent turn: %w", err)
	}

	c.log.Upsert("", transcript.RoleAgent, turn.Reply, c.now(), transcript.SourceText)
	accepted := c.ledger.Add(turn.Intelligence)
	upiCaptured := false
	for _, item := range accepted {
		if item.Category == extract.CategoryUPI {
			upiCaptured = true
		}
	}
	c.engine.ChatRoundTrip(&c.mtx, turn.Confidence, latencyMs, upiCaptured)
	c.recordAccepted(accepted, "chat")

	c.publish(feed.SubjectTurnCompleted, feed.TurnCompleted{
		SessionID:  c.id,
		Kind:       "chat",
		LatencyMs:  latencyMs,
		Confidence: turn.Confidence,
	})
	return turn.Reply, latencyMs, nil
}

// Reset discards the session wholesale and reinitializes zero values under a
// fresh id. The generation bump invalidates any in-flight chat completion.
// A non-empty session is reported to the attached Reporter before being
// cleared; reporting is fire-and-forget.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgCount := c.log.Len()
	if msgCount > 0 && c.reporter != nil {
		result := callback.FinalResult{
			SessionID:              c.id,
			ScamDetected:           c.ledger.Len() > 0 || c.mtx.ThreatLevel >= 50,
			TotalMessagesExchanged: msgCount,
			ExtractedIntelligence:  c.ledger.ByCategory(),
			AgentNotes:             strings.Join(c.events, "; "),
		}
		reporter := c.reporter
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := reporter.Send(ctx, result); err != nil {
				c.logger.Warn("final result callback failed", "error", err)
			}
		}()
	}

	c.publish(feed.SubjectSessionReset, feed.SessionReset{
		SessionID: c.id,
		Messages:  msgCount,
		Intel:     c.ledger.Len(),
	})

	c.log.Reset()
	c.ledger.Reset()
	c.mtx = metrics.Metrics{}
	c.events = nil
	c.id = uuid.NewString()
	c.startTime = c.now()
	c.generation++
	c.inFlight = false
	c.logger.Info("session reset", "session_id", c.id, "generation", c.generation)
}

// RunClock recomputes TimeWasted once per second until ctx is cancelled.
func (c *Controller) RunClock(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

// tick recomputes TimeWasted from the session start. The clock runs from
// session creation, not from the first message.
func (c *Controller) tick() {
	c.mu.Lock()
	c.mtx.TimeWasted = c.now().Sub(c.startTime)
	c.mu.Unlock()
}

// SetPersona switches the active persona for subsequent agent turns.
func (c *Controller) SetPersona(key string) (persona.Persona, error) {
	p, ok := persona.Lookup(key)
	if !ok {
		return persona.Persona{}, fmt.Errorf("%w: %q", ErrUnknownPersona, key)
	}
	c.mu.Lock()
	c.persona = key
	c.note("persona switched to " + p.Name)
	c.mu.Unlock()
	return p, nil
}

// Note appends one line to the protocol log.
func (c *Controller) Note(msg string) {
	c.mu.Lock()
	c.note(msg)
	c.mu.Unlock()
}

// Snapshot returns a copy of the full session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := "idle"
	if c.log.Len() > 0 {
		state = "active"
	}
	return Snapshot{
		SessionID:    c.id,
		State:        state,
		Persona:      c.persona,
		Generation:   c.generation,
		Messages:     c.log.Messages(),
		Intelligence: c.ledger.ByCategory(),
		Metrics:      c.mtx,
		Events:       append([]string(nil), c.events...),
		StartTime:    c.startTime,
	}
}

// history converts the current transcript into the agent wire shape. Caller
// holds the mutex.
func (c *Controller) history() []brain.Message {
	msgs := c.log.Messages()
	out := make([]brain.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, brain.Message{Sender: string(m.Role), Text: m.Text})
	}
	return out
}

// recordAccepted notes and publishes each newly accepted ledger entry.
// Caller holds the mutex.
func (c *Controller) recordAccepted(accepted []ledger.Item, source string) {
	for _, item := range accepted {
		c.note(fmt.Sprintf("intel captured [%s] %s", item.Category, item.Value))
		c.publish(feed.SubjectIntelCaptured, feed.IntelCaptured{
			SessionID: c.id,
			Category:  string(item.Category),
			Value:     item.Value,
			Source:    source,
		})
	}
}

// note appends to the bounded protocol log. Caller holds the mutex.
func (c *Controller) note(msg string) {
	c.events = append(c.events, c.now().Format("15:04:05")+" "+msg)
	if limit := c.cfg.ProtocolLogLimit; limit > 0 && len(c.events) > limit {
		c.events = c.events[len(c.events)-limit:]
	}
}

// publish sends to the feed when one is attached. Publish failures are the
// feed's to log; they never affect the session.
func (c *Controller) publish(subject string, data any) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(subject, data); err != nil {
		c.logger.Warn("feed publish failed", "subject", subject, "error", err)
	}
}
