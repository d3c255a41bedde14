// Package metrics derives the session gauges — threat, fatigue, money saved,
// latency — from each accepted turn. The monetary figures are cosmetic
// engagement scores, not audited amounts; the increment comes from an
// injectable Scorer so tests stay deterministic.
package metrics

import (
	"math/rand"
	"time"
)

// Metrics is the derived per-session series. MoneySaved never decreases
// within a session; ThreatLevel and Fatigue stay clamped to [0,100]; both
// histories are bounded rings with the oldest value evicted on overflow.
type Metrics struct {
	ThreatLevel    float64       `json:"threat_level"`
	Fatigue        float64       `json:"fatigue"`
	MoneySaved     int           `json:"money_saved"`
	MoneyHistory   []int         `json:"money_history"`
	LatencyHistory []int         `json:"latency_history_ms"`
	TimeWasted     time.Duration `json:"time_wasted"`
}

// Config carries the engine's tuning constants. The values are product
// tuning, kept overridable rather than derived.
type Config struct {
	VoiceThreatStep     float64
	VoiceFatigueStep    float64
	ChatFatigueStep     float64
	MoneyMin            int
	MoneyMax            int
	UPIBounty           int
	MoneyHistoryLimit   int
	LatencyHistoryLimit int
}

func DefaultConfig() Config {
	return Config{
		VoiceThreatStep:     2,
		VoiceFatigueStep:    1,
		ChatFatigueStep:     10,
		MoneyMin:            100,
		MoneyMax:            600,
		UPIBounty:           500,
		MoneyHistoryLimit:   20,
		LatencyHistoryLimit: 10,
	}
}

// Scorer produces the cosmetic money increment for one voice turn.
type Scorer interface {
	MoneyIncrement(min, max int) int
}

type randScorer struct{}

func (randScorer) MoneyIncrement(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.Intn(max-min+1)
}

// NewRandScorer returns the production scorer: a uniform draw in [min, max].
func NewRandScorer() Scorer {
	return randScorer{}
}

// Engine applies turn outcomes to a Metrics value.
type Engine struct {
	cfg    Config
	scorer Scorer
}

func NewEngine(scorer Scorer) *Engine {
	return NewEngineWithConfig(DefaultConfig(), scorer)
}

func NewEngineWithConfig(cfg Config, scorer Scorer) *Engine {
	return &Engine{cfg: cfg, scorer: scorer}
}

// VoiceScammerTurn applies one accepted voice utterance from the scammer:
// threat and fatigue creep up by their voice steps, and the money score
// grows by a scorer draw.
func (e *Engine) VoiceScammerTurn(m *Metrics) {
	m.ThreatLevel = clamp(m.ThreatLevel+e.cfg.VoiceThreatStep, 0, 100)
	m.Fatigue = clamp(m.Fatigue+e.cfg.VoiceFatigueStep, 0, 100)

	inc := e.scorer.MoneyIncrement(e.cfg.MoneyMin, e.cfg.MoneyMax)
	if inc > 0 {
		m.MoneySaved += inc
	}
	m.MoneyHistory = pushBounded(m.MoneyHistory, m.MoneySaved, e.cfg.MoneyHistoryLimit)
}

// ChatRoundTrip applies one completed webhook exchange. The agent service's
// confidence overwrites the threat level (it is an absolute assessment, not
// a delta), fatigue takes the chat step, and a UPI capture this turn earns
// the bounty.
func (e *Engine) ChatRoundTrip(m *Metrics, confidence float64, latencyMs int, upiCaptured bool) {
	m.ThreatLevel = clamp(confidence*100, 0, 100)
	m.Fatigue = clamp(m.Fatigue+e.cfg.ChatFatigueStep, 0, 100)
	if upiCaptured {
		m.MoneySaved += e.cfg.UPIBounty
		m.MoneyHistory = pushBounded(m.MoneyHistory, m.MoneySaved, e.cfg.MoneyHistoryLimit)
	}
	if latencyMs < 0 {
		latencyMs = 0
	}
	m.LatencyHistory = pushBounded(m.LatencyHistory, latencyMs, e.cfg.LatencyHistoryLimit)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func pushBounded(hist []int, v, limit int) []int {
	hist = append(hist, v)
	if limit > 0 && len(hist) > limit {
		hist = hist[len(hist)-limit:]
	}
	return hist
}
