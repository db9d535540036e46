package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRiskTier indicates a tier outside the enumerated set reached the
// prompt selector. With the tier type under our control this should be
// unreachable; seeing it means a wiring defect, not bad user input.
var ErrUnknownRiskTier = errors.New("unknown risk tier")

const (
	highTierPrompt = "You are a crisis counselor. The user is expressing thoughts of self-harm or suicide. " +
		"Respond with immediate care, validation, and clear direction to emergency resources. " +
		"Always mention calling 1075 (India crisis line) or emergency services. " +
		"Be empathetic but directive about seeking immediate help."

	mediumTierPrompt = "You are a mental health supporter. The user is experiencing significant distress " +
		"(anxiety, depression, panic). Provide coping strategies, grounding techniques, and emotional validation. " +
		"Offer practical breathing exercises or mindfulness techniques."

	lowTierPrompt = "You are a supportive counselor. The user is dealing with everyday stress and worries. " +
		"Provide validation, gentle guidance, and stress management techniques. " +
		"Ask thoughtful follow-up questions to understand their situation better."
)

// CrisisMessage is the fixed, reviewed reply returned on escalation. It is
// never replaced by model output.
const CrisisMessage = "I am concerned by what you've shared. It sounds like you are in immediate distress, " +
	"and it's important to reach out for help right now. Please call a crisis hotline like 1075 immediately. " +
	"You are not alone and help is available."

// EmptyReplyMessage is the neutral redirect used when the generation service
// answers successfully but returns no usable text (e.g. content filtering).
const EmptyReplyMessage = "I'm sorry, I'm unable to respond to that topic right now. Let's talk about something else."

// fallbackReplies are the canned per-tier responses used when the generation
// service cannot be reached. The user never sees a transport error.
var fallbackReplies = map[RiskTier]string{
	TierHigh: "I hear that you're in a lot of pain right now. Your life has value and you matter. " +
		"Please reach out to the crisis hotline at 1075 or emergency services immediately. " +
		"I'm also here to talk - can you tell me if you're in a safe place right now?",
	TierMedium: "I understand you're going through a difficult time. These feelings can be overwhelming, " +
		"but you don't have to face them alone. Let's work on some coping strategies together. " +
		"Take a deep breath with me - in for 4, hold for 4, out for 4.",
	TierLow: "I hear you, and your feelings are completely valid. Stress and worry are normal responses " +
		"to life's challenges. Let's explore some strategies that might help. What usually helps you feel calmer?",
}

// AssessmentScores carries optional screening results from a prior
// questionnaire. They only enrich the prompt; absence is fine.
type AssessmentScores struct {
	PHQ9 *int
	GAD7 *int
}

// SelectTemplate returns the system-prompt template for a tier.
func SelectTemplate(tier RiskTier) (string, error) {
	switch tier {
	case TierHigh:
		return highTierPrompt, nil
	case TierMedium:
		return mediumTierPrompt, nil
	case TierLow:
		return lowTierPrompt, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRiskTier, tier)
	}
}

// FallbackReply returns the canned reply for a tier, defaulting to the
// low-tier text for safety if the tier is somehow unknown.
func FallbackReply(tier RiskTier) string {
	if reply, ok := fallbackReplies[tier]; ok {
		return reply
	}
	return fallbackReplies[TierLow]
}

// ComposePrompt builds the full prompt sent downstream: persona template,
// the literal user message, optional screening context, and a closing
// instruction to respond with empathy.
func ComposePrompt(template, userMessage string, scores *AssessmentScores) string {
	var b strings.Builder
	b.WriteString(template)
	b.WriteString("\n\nUser message: ")
	b.WriteString(userMessage)
	if scores != nil {
		if scores.PHQ9 != nil {
			fmt.Fprintf(&b, "\n\nFor context, the user's recent PHQ-9 depression screening score was %d out of 27.", *scores.PHQ9)
		}
		if scores.GAD7 != nil {
			fmt.Fprintf(&b, "\nTheir recent GAD-7 anxiety screening score was %d out of 21.", *scores.GAD7)
		}
	}
	b.WriteString("\n\nRespond with empathy and appropriate guidance based on the risk level.")
	return b.String()
}
