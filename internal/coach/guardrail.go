package coach

import "strings"

// painKeywords trigger the safety guardrail when they appear anywhere in an
// utterance.
var painKeywords = []string{"ouch", "hurts", "pain", "stop"}

// SafetyWarning is what the coach says the moment pain is detected.
const SafetyWarning = "Stop the exercise immediately. I'm not a doctor. " +
	"If you're in pain, please consult a healthcare provider before continuing."

// DetectPain reports whether an utterance contains a pain keyword.
// Matching is case-insensitive and matches inside words ("painful" counts).
func DetectPain(utterance string) bool {
	u := strings.ToLower(strings.TrimSpace(utterance))
	if u == "" {
		return false
	}
	for _, kw := range painKeywords {
		if strings.Contains(u, kw) {
			return true
		}
	}
	return false
}
