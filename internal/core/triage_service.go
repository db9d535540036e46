package core

import (
	"context"
	"errors"
	"log"
	"time"
)

// TriageOutcome tags how a triage run terminated. Every run ends in exactly
// one of these; there is no error terminal.
type TriageOutcome string

const (
	OutcomeEscalated  TriageOutcome = "escalated"  // crisis short-circuit, no generation attempted
	OutcomeGenerated  TriageOutcome = "generated"  // reply produced by the generation service
	OutcomeFallback   TriageOutcome = "fallback"   // transport fault absorbed into canned tier reply
	OutcomeRedirected TriageOutcome = "redirected" // service answered with no usable text
)

// TriageResult is what the caller gets back for every message, fault or not.
type TriageResult struct {
	Content   string
	Escalated bool
	Score     int
	Tier      RiskTier
	Outcome   TriageOutcome
}

// TriageService runs each incoming message through scoring, the escalation
// decision, and (when safe) prompt composition plus generation. It holds no
// per-conversation state; invocations are independent.
type TriageService struct {
	completions CompletionClient
	timeout     time.Duration
}

func NewTriageService(completions CompletionClient, timeout time.Duration) *TriageService {
	return &TriageService{
		completions: completions,
		timeout:     timeout,
	}
}

// Handle processes one user message to a final reply. It never returns an
// error: escalation wins before any outbound call is made, and downstream
// faults resolve to tier-appropriate canned text.
func (s *TriageService) Handle(ctx context.Context, userMessage string, scores *AssessmentScores) TriageResult {
	// Scoring
	score := ScoreMessage(userMessage)
	tier := ClassifyRisk(userMessage)

	// Deciding
	if ShouldEscalate(score) {
		log.Printf("High-risk message detected (score %d, threshold %d). Escalating.", score, RiskThreshold)
		return TriageResult{
			Content:   CrisisMessage,
			Escalated: true,
			Score:     score,
			Tier:      tier,
			Outcome:   OutcomeEscalated,
		}
	}

	// Generating
	template, err := SelectTemplate(tier)
	if err != nil {
		// Unreachable with a well-formed tier; treat like any downstream
		// fault so the user still gets a coherent reply, but log loudly.
		log.Printf("Configuration error selecting prompt template: %v", err)
		return TriageResult{
			Content: FallbackReply(tier),
			Score:   score,
			Tier:    tier,
			Outcome: OutcomeFallback,
		}
	}

	prompt := ComposePrompt(template, userMessage, scores)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.completions.Complete(callCtx, prompt)
	if err != nil {
		if errors.Is(err, ErrEmptyReply) {
			log.Printf("Generation service returned no content for tier %s message.", tier)
			return TriageResult{
				Content: EmptyReplyMessage,
				Score:   score,
				Tier:    tier,
				Outcome: OutcomeRedirected,
			}
		}
		log.Printf("Generation service call failed (tier %s): %v. Using fallback reply.", tier, err)
		return TriageResult{
			Content: FallbackReply(tier),
			Score:   score,
			Tier:    tier,
			Outcome: OutcomeFallback,
		}
	}

	// Responding
	return TriageResult{
		Content: reply,
		Score:   score,
		Tier:    tier,
		Outcome: OutcomeGenerated,
	}
}
