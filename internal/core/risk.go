package core

import "strings"

// RiskThreshold is the escalation cutoff. A score strictly above it bypasses
// generation entirely. It sits below the highest single keyword weight (10) so
// that any one of the most severe phrases alone is enough to escalate.
const RiskThreshold = 9

// riskKeywords maps crisis phrases to weights. Matching is plain substring
// containment on the lower-cased message, so partial-word hits are possible;
// over-matching is accepted here because missing a phrase is the worse failure.
var riskKeywords = map[string]int{
	"want to die":        10,
	"kill myself":        10,
	"end my life":        10,
	"suicide":            8,
	"have a plan":        8,
	"pills":              5,
	"gun":                5,
	"rope":               5,
	"hurt myself":        7,
	"cutting":            7,
	"don't want to live": 6,
	"no reason to live":  6,
	"better off dead":    6,
}

// RiskTier is the coarse classification used only to pick a prompt persona.
// It is computed from its own keyword lists, independent of the weighted score.
type RiskTier string

const (
	TierLow    RiskTier = "low"
	TierMedium RiskTier = "medium"
	TierHigh   RiskTier = "high"
)

var tierKeywords = map[RiskTier][]string{
	TierHigh:   {"suicide", "kill myself", "end it all", "not worth living", "hurt myself"},
	TierMedium: {"depressed", "anxious", "panic", "can't cope", "overwhelming"},
	TierLow:    {"stressed", "worried", "tired", "sad", "confused"},
}

// ScoreMessage sums the weights of every crisis keyword found in the message.
// Each keyword counts once regardless of how often it occurs.
func ScoreMessage(message string) int {
	score := 0
	lower := strings.ToLower(message)
	for keyword, weight := range riskKeywords {
		if strings.Contains(lower, keyword) {
			score += weight
		}
	}
	return score
}

// ShouldEscalate reports whether a score demands the fixed crisis response
// instead of AI generation.
func ShouldEscalate(score int) bool {
	return score > RiskThreshold
}

// ClassifyRisk assigns the prompt-selection tier. High-tier keywords win over
// medium; anything without a match is low.
func ClassifyRisk(message string) RiskTier {
	lower := strings.ToLower(message)
	for _, keyword := range tierKeywords[TierHigh] {
		if strings.Contains(lower, keyword) {
			return TierHigh
		}
	}
	for _, keyword := range tierKeywords[TierMedium] {
		if strings.Contains(lower, keyword) {
			return TierMedium
		}
	}
	return TierLow
}
