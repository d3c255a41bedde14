// Package ledger stores the accepted intelligence entries for a session,
// deduplicated per category.
//
// Dedup runs per candidate in three steps: an exact match on the normalized
// value rejects; a category-scoped fuzzy subsumption check (either value a
// substring of the other) rejects — except for job titles, where a markedly
// shorter candidate replaces the existing entry, since "manager" is the
// cleaner canonical form of "senior bank manager"; everything else inserts.
// Subsumption never compares across categories.
package ledger

import (
	"strings"

	"github.com/vigil-labs/vigil/internal/extract"
)

// Item is one accepted ledger entry.
type Item struct {
	Category extract.Category `json:"category"`
	Value    string           `json:"value"`
}

// Config carries the ledger's tuning constants.
type Config struct {
	// JobReplaceRatio is the length ratio below which a shorter job title
	// replaces an existing subsuming entry instead of being rejected.
	JobReplaceRatio float64
}

func DefaultConfig() Config {
	return Config{JobReplaceRatio: 0.8}
}

// Ledger holds accepted entries in insertion order. Not safe for concurrent
// use; the session controller serializes access.
type Ledger struct {
	cfg   Config
	items []Item
}

func New() *Ledger {
	return NewWithConfig(DefaultConfig())
}

func NewWithConfig(cfg Config) *Ledger {
	return &Ledger{cfg: cfg}
}

// Add runs each candidate through the dedup policy and returns the subset
// actually inserted or replaced, in order.
func (l *Ledger) Add(candidates []extract.Candidate) []Item {
	var accepted []Item
	for _, c := range candidates {
		raw := strings.TrimSpace(c.Value)
		norm := normalize(raw)
		if norm == "" {
			continue
		}
		if item, ok := l.add(c.Category, raw, norm); ok {
			accepted = append(accepted, item)
		}
	}
	return accepted
}

func (l *Ledger) add(cat extract.Category, raw, norm string) (Item, bool) {
	for i := range l.items {
		e := &l.items[i]
		if e.Category != cat {
			continue
		}
		existing := normalize(e.Value)
		if existing == norm {
			return Item{}, false
		}
		if strings.Contains(existing, norm) || strings.Contains(norm, existing) {
			if cat == extract.CategoryJob && float64(len(norm)) < l.cfg.JobReplaceRatio*float64(len(existing)) {
				e.Value = raw
				return *e, true
			}
			return Item{}, false
		}
	}
	l.items = append(l.items, Item{Category: cat, Value: raw})
	return l.items[len(l.items)-1], true
}

// Items returns a copy of all entries in insertion order.
func (l *Ledger) Items() []Item {
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// ByCategory groups entry values under their wire keys, for snapshots and
// the final-result callback. Every category appears, empty or not.
func (l *Ledger) ByCategory() map[string][]string {
	out := make(map[string][]string)
	for _, c := range []extract.Category{
		extract.CategoryUPI, extract.CategoryPhone, extract.CategoryLocation,
		extract.CategoryName, extract.CategoryLink, extract.CategoryBank,
		extract.CategoryJob, extract.CategoryCompany,
	} {
		out[c.WireKey()] = []string{}
	}
	for _, it := range l.items {
		key := it.Category.WireKey()
		out[key] = append(out[key], it.Value)
	}
	return out
}

func (l *Ledger) Len() int {
	return len(l.items)
}

// Reset discards all entries.
func (l *Ledger) Reset() {
	l.items = nil
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
