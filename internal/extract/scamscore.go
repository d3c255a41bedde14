package extract

import "strings"

var (
	urgencyKeywords = []string{"urgent", "immediately", "suspended", "blocked", "arrest", "warrant", "expire", "lapse"}
	moneyKeywords   = []string{"pay", "transfer", "upi", "bank", "refund", "gpay", "paytm", "credit card", "kyc"}
	actionKeywords  = []string{"click here", "link", "download", "apk", "form"}
)

// ScamScore rates an utterance for scam intent on keyword and pattern
// signals, returning a confidence in [0,1] and the reasons that fired. It is
// a coarse heuristic used for logging and the final callback notes, not for
// the threat gauge (which the agent service's confidence drives).
func ScamScore(text string) (float64, []string) {
	score := 0.0
	var reasons []string
	lower := strings.ToLower(text)

	if containsAny(lower, urgencyKeywords) {
		score += 0.4
		reasons = append(reasons, "urgency/threat detected")
	}
	if containsAny(lower, moneyKeywords) {
		score += 0.3
		reasons = append(reasons, "financial request detected")
	}
	if containsAny(lower, actionKeywords) {
		score += 0.3
		reasons = append(reasons, "suspicious action requested")
	}
	if linkPattern.MatchString(text) {
		score += 0.2
		reasons = append(reasons, "contains URL")
	}

	if score > 1.0 {
		score = 1.0
	}
	return score, reasons
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
