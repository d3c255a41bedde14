// Package persona defines the honey-pot characters a session can run as.
// The engine never interprets a persona; it is passed through unchanged to
// the conversation-agent service and the media transport.
package persona

import "sort"

// Persona is one simulated character.
type Persona struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Label    string `json:"label"`
	Voice    string `json:"voice"`
	Greeting string `json:"greeting"`
}

const sharedGoal = "Waste the caller's time and coax out their UPI id, bank details, phone number and location. Keep replies under two sentences."

var personas = map[string]Persona{
	"grandma": {
		Key:      "grandma",
		Name:     "Mrs. Sharma",
		Label:    "Honey-Pot",
		Voice:    "aura-athena-en",
		Greeting: "Hello? Hello? I can't see who's calling... my eyes are not what they used to be.",
	},
	"ramesh": {
		Key:      "ramesh",
		Name:     "Ramesh Kumar",
		Label:    "Skeptical",
		Voice:    "aura-orion-en",
		Greeting: "Haan, Ramesh here. Tell me quickly, I have a line of customers at the shop.",
	},
	"priya": {
		Key:      "priya",
		Name:     "Priya",
		Label:    "Distracted",
		Voice:    "aura-luna-en",
		Greeting: "Hey! Who is this? Long time! Wait, do I know this number?",
	},
	"colonel": {
		Key:      "colonel",
		Name:     "Colonel Bakshi",
		Label:    "Authoritative",
		Voice:    "aura-zeus-en",
		Greeting: "Bakshi here. State your name. I'm in the middle of a Veteran's meeting.",
	},
}

// DefaultKey is the persona used when none is configured.
const DefaultKey = "grandma"

// Goal returns the counter-intelligence objective shared by every persona.
func Goal() string {
	return sharedGoal
}

// Lookup returns the persona for key, reporting whether it exists.
func Lookup(key string) (Persona, bool) {
	p, ok := personas[key]
	return p, ok
}

// Get returns the persona for key, falling back to the default.
func Get(key string) Persona {
	if p, ok := personas[key]; ok {
		return p
	}
	return personas[DefaultKey]
}

// Keys lists the known persona keys, sorted.
func Keys() []string {
	out := make([]string, 0, len(personas))
	for k := range personas {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
