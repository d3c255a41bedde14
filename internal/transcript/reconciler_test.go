package transcript

import (
	"testing"
	"time"
)

var ts = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func TestUpsert_EmptyTextIgnored(t *testing.T) {
	l := NewLog()
	if l.Upsert("a", RoleScammer, "   ", ts, SourceVoice) {
		t.Error("expected whitespace-only text to be a no-op")
	}
	if l.Len() != 0 {
		t.Errorf("expected empty log, got %d messages", l.Len())
	}
}

func TestUpsert_IdempotentCorrection(t *testing.T) {
	l := NewLog()
	l.Upsert("a", RoleScammer, "hello", ts, SourceVoice)
	l.Upsert("a", RoleScammer, "hello world", ts, SourceVoice)

	msgs := l.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Text != "hello world" {
		t.Errorf("expected corrected text %q, got %q", "hello world", msgs[0].Text)
	}
}

func TestUpsert_MergeOnContiguity(t *testing.T) {
	l := NewLog()
	l.Upsert("a", RoleScammer, "hi", ts, SourceVoice)
	l.Upsert("b", RoleScammer, "there", ts, SourceVoice)

	msgs := l.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 merged message, got %d", len(msgs))
	}
	if msgs[0].Text != "hi there" {
		t.Errorf("expected merged text %q, got %q", "hi there", msgs[0].Text)
	}
	if msgs[0].ID != "b" {
		t.Errorf("expected merged message to adopt id b, got %q", msgs[0].ID)
	}
}

func TestUpsert_CorrectionAfterMergeHitsMergedBubble(t *testing.T) {
	l := NewLog()
	l.Upsert("a", RoleScammer, "hi", ts, SourceVoice)
	l.Upsert("b", RoleScammer, "there", ts, SourceVoice)
	// STT corrects the second sentence; the merged bubble carries id "b".
	l.Upsert("b", RoleScammer, "there friend", ts, SourceVoice)

	msgs := l.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Text != "there friend" {
		t.Errorf("expected correction to replace merged text, got %q", msgs[0].Text)
	}
}

func TestUpsert_RoleBreakPreventsMerge(t *testing.T) {
	l := NewLog()
	l.Upsert("a", RoleScammer, "hi", ts, SourceVoice)
	l.Upsert("b", RoleAgent, "there", ts, SourceVoice)

	msgs := l.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Text != "hi" || msgs[1].Text != "there" {
		t.Errorf("unexpected texts: %q, %q", msgs[0].Text, msgs[1].Text)
	}
}

func TestUpsert_ChatTurnsNeverMerge(t *testing.T) {
	l := NewLog()
	l.Upsert("", RoleScammer, "send the money", ts, SourceText)
	l.Upsert("", RoleScammer, "now", ts, SourceText)

	if l.Len() != 2 {
		t.Fatalf("expected consecutive chat turns to stay separate, got %d messages", l.Len())
	}
}

func TestUpsert_OrderPreserved(t *testing.T) {
	l := NewLog()
	l.Upsert("a", RoleScammer, "one", ts, SourceVoice)
	l.Upsert("b", RoleAgent, "two", ts, SourceVoice)
	l.Upsert("c", RoleScammer, "three", ts, SourceVoice)
	// Correct the first segment after later messages exist.
	l.Upsert("a", RoleScammer, "one corrected", ts, SourceVoice)

	msgs := l.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	want := []string{"one corrected", "two", "three"}
	for i, w := range want {
		if msgs[i].Text != w {
			t.Errorf("message %d: expected %q, got %q", i, w, msgs[i].Text)
		}
	}
}

func TestReset(t *testing.T) {
	l := NewLog()
	l.Upsert("a", RoleScammer, "hello", ts, SourceVoice)
	l.Reset()
	if l.Len() != 0 {
		t.Errorf("expected empty log after reset, got %d", l.Len())
	}
	if _, ok := l.Last(); ok {
		t.Error("expected Last to report empty after reset")
	}
}
