package metrics

import "testing"

// fixedScorer always returns the same increment.
type fixedScorer struct{ inc int }

func (f fixedScorer) MoneyIncrement(min, max int) int { return f.inc }

func TestVoiceScammerTurn_Steps(t *testing.T) {
	e := NewEngine(fixedScorer{inc: 250})
	var m Metrics

	e.VoiceScammerTurn(&m)
	if m.ThreatLevel != 2 {
		t.Errorf("expected threat 2, got %v", m.ThreatLevel)
	}
	if m.Fatigue != 1 {
		t.Errorf("expected fatigue 1, got %v", m.Fatigue)
	}
	if m.MoneySaved != 250 {
		t.Errorf("expected money 250, got %d", m.MoneySaved)
	}
	if len(m.MoneyHistory) != 1 || m.MoneyHistory[0] != 250 {
		t.Errorf("expected money history [250], got %v", m.MoneyHistory)
	}
}

func TestVoiceScammerTurn_ClampsExactlyAt100(t *testing.T) {
	e := NewEngine(fixedScorer{inc: 100})
	var m Metrics

	for i := 0; i < 200; i++ {
		e.VoiceScammerTurn(&m)
	}
	if m.ThreatLevel != 100 {
		t.Errorf("expected threat exactly 100, got %v", m.ThreatLevel)
	}
	if m.Fatigue != 100 {
		t.Errorf("expected fatigue exactly 100, got %v", m.Fatigue)
	}
}

func TestVoiceScammerTurn_MoneyHistoryBounded(t *testing.T) {
	e := NewEngine(fixedScorer{inc: 100})
	var m Metrics

	for i := 0; i < 30; i++ {
		e.VoiceScammerTurn(&m)
	}
	if len(m.MoneyHistory) != 20 {
		t.Fatalf("expected history length 20, got %d", len(m.MoneyHistory))
	}
	// Most recent 20 snapshots, in order: 1100, 1200, ..., 3000.
	for i, v := range m.MoneyHistory {
		want := 1100 + i*100
		if v != want {
			t.Errorf("history[%d]: expected %d, got %d", i, want, v)
		}
	}
}

func TestVoiceScammerTurn_MoneyMonotonic(t *testing.T) {
	e := NewEngine(fixedScorer{inc: -50})
	var m Metrics
	m.MoneySaved = 1000

	e.VoiceScammerTurn(&m)
	if m.MoneySaved != 1000 {
		t.Errorf("money must never decrease, got %d", m.MoneySaved)
	}
}

func TestChatRoundTrip_ConfidenceOverwritesThreat(t *testing.T) {
	e := NewEngine(fixedScorer{})
	m := Metrics{ThreatLevel: 90}

	e.ChatRoundTrip(&m, 0.4, 120, false)
	if m.ThreatLevel != 40 {
		t.Errorf("expected threat overwritten to 40, got %v", m.ThreatLevel)
	}
	if m.Fatigue != 10 {
		t.Errorf("expected fatigue 10, got %v", m.Fatigue)
	}
}

func TestChatRoundTrip_ConfidenceClamped(t *testing.T) {
	e := NewEngine(fixedScorer{})
	var m Metrics

	e.ChatRoundTrip(&m, 1.7, 0, false)
	if m.ThreatLevel != 100 {
		t.Errorf("expected threat clamped to 100, got %v", m.ThreatLevel)
	}

	e.ChatRoundTrip(&m, -0.5, 0, false)
	if m.ThreatLevel != 0 {
		t.Errorf("expected threat clamped to 0, got %v", m.ThreatLevel)
	}
}

func TestChatRoundTrip_UPIBounty(t *testing.T) {
	e := NewEngine(fixedScorer{})
	var m Metrics

	e.ChatRoundTrip(&m, 0.5, 100, false)
	if m.MoneySaved != 0 {
		t.Errorf("expected no bounty without UPI, got %d", m.MoneySaved)
	}

	e.ChatRoundTrip(&m, 0.5, 100, true)
	if m.MoneySaved != 500 {
		t.Errorf("expected bounty 500, got %d", m.MoneySaved)
	}
}

func TestChatRoundTrip_LatencyHistoryBounded(t *testing.T) {
	e := NewEngine(fixedScorer{})
	var m Metrics

	for i := 0; i < 15; i++ {
		e.ChatRoundTrip(&m, 0.5, 100+i, false)
	}
	if len(m.LatencyHistory) != 10 {
		t.Fatalf("expected latency history length 10, got %d", len(m.LatencyHistory))
	}
	if m.LatencyHistory[0] != 105 || m.LatencyHistory[9] != 114 {
		t.Errorf("expected most recent 10 samples, got %v", m.LatencyHistory)
	}
}

func TestChatRoundTrip_NegativeLatencyFloored(t *testing.T) {
	e := NewEngine(fixedScorer{})
	var m Metrics

	e.ChatRoundTrip(&m, 0.5, -20, false)
	if m.LatencyHistory[0] != 0 {
		t.Errorf("expected negative latency floored to 0, got %v", m.LatencyHistory)
	}
}

func TestRandScorer_Range(t *testing.T) {
	s := NewRandScorer()
	for i := 0; i < 1000; i++ {
		inc := s.MoneyIncrement(100, 600)
		if inc < 100 || inc > 600 {
			t.Fatalf("increment %d out of [100,600]", inc)
		}
	}
}
