package extract

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	upiPattern   = regexp.MustCompile(`[a-zA-Z0-9._-]{2,256}@[a-zA-Z]{2,64}`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,4}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	linkPattern  = regexp.MustCompile(`https?://[^\s]+`)

	// gazetteer of city/country names the honey-pot personas are primed for.
	locationPattern = regexp.MustCompile(`(?i)\b(mumbai|delhi|bangalore|chennai|kolkata|london|new york|dubai|hyderabad|pune|ahmedabad|gurgaon|noida|india)\b`)

	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bmy name is\s+([a-zA-Z][a-zA-Z ]{0,29})`),
		regexp.MustCompile(`(?i)\bthis is\s+([a-zA-Z]+)\s+calling\b`),
		regexp.MustCompile(`(?i)\bspeaking with\s+([a-zA-Z]+)\b`),
	}

	bankPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{11,18}\b`),
		regexp.MustCompile(`\b\d{4}[-\s]\d{4}[-\s]\d{4}[-\s]\d{4}\b`),
	}

	jobFiller = regexp.MustCompile(`(?i)^(i am|myself|this is|is|am|a)\s+`)
)

// nameNoise filters titles that leak into name captures.
var nameNoise = map[string]bool{
	"scam":    true,
	"support": true,
	"bank":    true,
	"manager": true,
}

var jobKeywords = []string{"manager", "officer", "department", "division", "supervisor", "agent", "support"}

var jobPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(jobKeywords))
	for _, kw := range jobKeywords {
		out = append(out, regexp.MustCompile(fmt.Sprintf(`(?i)((?:\w+\W+){0,2}\b%s\b)`, kw)))
	}
	return out
}()

// DefaultStrategies returns the built-in per-category rules. UPI and phone
// run against spoken-normalized text so dictated ids still match.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Category: CategoryUPI, Extract: extractUPI},
		{Category: CategoryPhone, Extract: extractPhone},
		{Category: CategoryLocation, Extract: extractLocation},
		{Category: CategoryName, Extract: extractName},
		{Category: CategoryLink, Extract: extractLink},
		{Category: CategoryBank, Extract: extractBank},
		{Category: CategoryJob, Extract: extractJob},
	}
}

func extractUPI(text string) []string {
	return upiPattern.FindAllString(NormalizeSpoken(text), -1)
}

func extractPhone(text string) []string {
	var out []string
	for _, m := range phonePattern.FindAllString(NormalizeSpoken(text), -1) {
		out = append(out, strings.TrimSpace(m))
	}
	return out
}

func extractLocation(text string) []string {
	return locationPattern.FindAllString(text, -1)
}

func extractName(text string) []string {
	var out []string
	for _, p := range namePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if name == "" || nameNoise[strings.ToLower(name)] {
				continue
			}
			out = append(out, name)
		}
	}
	return out
}

func extractLink(text string) []string {
	return linkPattern.FindAllString(text, -1)
}

func extractBank(text string) []string {
	var out []string
	for _, p := range bankPatterns {
		out = append(out, p.FindAllString(text, -1)...)
	}
	return out
}

func extractJob(text string) []string {
	var out []string
	for _, p := range jobPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		job := strings.ToLower(strings.TrimSpace(m[1]))
		job = jobFiller.ReplaceAllString(job, "")
		if job != "" {
			out = append(out, job)
		}
	}
	return out
}
