// Package transcript maintains the ordered message log for a session.
//
// Streaming speech-to-text engines emit partial segments that may later be
// corrected, and they split a single utterance across several segments. The
// Log reconciles that stream into stable chat bubbles: corrections replace
// text in place, contiguous same-speaker segments are batched into one
// message, and completed chat turns append as-is.
package transcript

import (
	"strings"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleAgent   Role = "agent"
	RoleScammer Role = "scammer"
)

// Source identifies which channel a message arrived on.
type Source string

const (
	SourceVoice Source = "voice"
	SourceText  Source = "text"
)

// Message is one reconciled chat bubble. ID is set only for voice-sourced
// messages and tracks the most recent STT segment merged into it.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Source    Source    `json:"source"`
}

// Log holds the session's messages in insertion order. Only the tail element
// is ever mutated after insertion (by a merge); earlier messages change only
// through segment-id corrections, which never reorder.
type Log struct {
	msgs []Message
}

func NewLog() *Log {
	return &Log{}
}

// Upsert applies one transcript segment or chat turn and reports whether the
// log changed. Empty or whitespace-only text is ignored.
//
// When segmentID matches an existing message, the segment is a correction and
// replaces that message's text in place. Otherwise a voice segment whose role
// matches the last message is batched onto it, and the merged message adopts
// the new segment id so later corrections to this utterance land on the
// merged bubble. Anything else appends a new message. Chat turns carry no
// segment id and always append.
func (l *Log) Upsert(segmentID string, role Role, text string, ts time.Time, source Source) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	if segmentID != "" {
		for i := range l.msgs {
			if l.msgs[i].ID == segmentID {
				l.msgs[i].Text = text
				return true
			}
		}
	}

	if source == SourceVoice && len(l.msgs) > 0 {
		last := &l.msgs[len(l.msgs)-1]
		if last.Role == role {
			last.Text += " " + text
			last.ID = segmentID
			return true
		}
	}

	l.msgs = append(l.msgs, Message{
		ID:        segmentID,
		Role:      role,
		Text:      text,
		Timestamp: ts,
		Source:    source,
	})
	return true
}

// Messages returns a copy of the log in insertion order.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// Last returns the most recent message, or false when the log is empty.
func (l *Log) Last() (Message, bool) {
	if len(l.msgs) == 0 {
		return Message{}, false
	}
	return l.msgs[len(l.msgs)-1], true
}

func (l *Log) Len() int {
	return len(l.msgs)
}

// Reset discards all messages.
func (l *Log) Reset() {
	l.msgs = nil
}
