package callback

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSend(t *testing.T) {
	var got FinalResult
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type, got %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(server.URL, discardLogger())
	err := c.Send(context.Background(), FinalResult{
		SessionID:              "s-1",
		ScamDetected:           true,
		TotalMessagesExchanged: 7,
		ExtractedIntelligence:  map[string][]string{"upiIds": {"x@y"}},
		AgentNotes:             "confidence 0.7",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SessionID != "s-1" || !got.ScamDetected || got.TotalMessagesExchanged != 7 {
		t.Errorf("unexpected payload: %+v", got)
	}
	if got.ExtractedIntelligence["upiIds"][0] != "x@y" {
		t.Errorf("intelligence not forwarded: %+v", got.ExtractedIntelligence)
	}
}

func TestSend_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewClient(server.URL, discardLogger())
	if err := c.Send(context.Background(), FinalResult{}); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
