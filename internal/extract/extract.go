// Package extract pulls structured intelligence candidates out of raw
// scammer utterances. Extraction is pure and never fails: a pattern that
// does not match simply contributes nothing.
package extract

import "strings"

// Category classifies an extracted value.
type Category string

const (
	CategoryUPI      Category = "UPI"
	CategoryPhone    Category = "PHONE"
	CategoryLocation Category = "LOCATION"
	CategoryName     Category = "NAME"
	CategoryLink     Category = "LINK"
	CategoryBank     Category = "BANK"
	CategoryJob      Category = "JOB"
	CategoryCompany  Category = "COMPANY"
)

// wireKeys maps categories to the field names the conversation-agent service
// and the final-result callback use for intelligence payloads.
var wireKeys = map[Category]string{
	CategoryUPI:      "upiIds",
	CategoryPhone:    "phoneNumbers",
	CategoryLocation: "location",
	CategoryName:     "scammerName",
	CategoryLink:     "phishingLinks",
	CategoryBank:     "bankAccounts",
	CategoryJob:      "jobTitle",
	CategoryCompany:  "companyNames",
}

// WireKey returns the JSON field name used for this category on the wire.
func (c Category) WireKey() string {
	return wireKeys[c]
}

// CategoryFromWire resolves a wire field name back to its category.
func CategoryFromWire(key string) (Category, bool) {
	for c, k := range wireKeys {
		if k == key {
			return c, true
		}
	}
	return "", false
}

// Candidate is one raw extracted value, not yet deduplicated.
type Candidate struct {
	Category Category
	Value    string
}

// Strategy is one per-category extraction rule: a pure text -> values
// function. New categories plug in without touching the ledger or the
// reconciler.
type Strategy struct {
	Category Category
	Extract  func(text string) []string
}

// Extractor runs an ordered list of strategies over an utterance.
type Extractor struct {
	strategies []Strategy
}

// New returns an extractor with the default strategy set.
func New() *Extractor {
	return &Extractor{strategies: DefaultStrategies()}
}

// NewWithStrategies returns an extractor running only the given strategies.
func NewWithStrategies(strategies []Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// Extract runs every strategy over text and returns all candidates. Multiple
// categories may match the same utterance; no match yields an empty result.
func (e *Extractor) Extract(text string) []Candidate {
	var out []Candidate
	for _, s := range e.strategies {
		for _, v := range s.Extract(text) {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			out = append(out, Candidate{Category: s.Category, Value: v})
		}
	}
	return out
}
