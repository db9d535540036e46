package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/s4ik/mental-health-hub/internal/store"
)

// ErrInvalidAssessment indicates an unknown questionnaire type or an
// out-of-range score.
var ErrInvalidAssessment = errors.New("invalid assessment")

// Maximum totals for the supported questionnaires.
const (
	phq9MaxScore = 27
	gad7MaxScore = 21
)

// recentAssessmentWindow defines how far back results still count when
// deciding whether the user can go straight to chat.
const recentAssessmentWindow = 14 * 24 * time.Hour

// Flow actions returned to the client.
const (
	FlowNavigateToChat       = "navigate_to_chat"
	FlowNavigateToAssessment = "navigate_to_assessment"
)

type FlowScores struct {
	PHQ9Score int `json:"phq9Score"`
	GAD7Score int `json:"gad7Score"`
}

// FlowDecision tells the client where to send the user next. Scores is set
// only for navigate_to_chat.
type FlowDecision struct {
	Action string      `json:"action"`
	Scores *FlowScores `json:"scores,omitempty"`
}

// AssessmentService records questionnaire results and decides the chat entry
// flow from recent ones.
type AssessmentService struct {
	dbStore *store.SQLiteStore
	now     func() time.Time
}

func NewAssessmentService(db *store.SQLiteStore) *AssessmentService {
	return &AssessmentService{
		dbStore: db,
		now:     time.Now,
	}
}

// RecordAssessment validates and persists a questionnaire submission.
func (s *AssessmentService) RecordAssessment(userID int64, assessmentType string, score int) (*store.Assessment, error) {
	var maxScore int
	switch assessmentType {
	case store.AssessmentPHQ9:
		maxScore = phq9MaxScore
	case store.AssessmentGAD7:
		maxScore = gad7MaxScore
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidAssessment, assessmentType)
	}

	if score < 0 || score > maxScore {
		return nil, fmt.Errorf("%w: %s score %d out of range 0-%d", ErrInvalidAssessment, assessmentType, score, maxScore)
	}

	return s.dbStore.CreateAssessment(userID, assessmentType, score)
}

// ChatFlow checks the last 14 days of assessments. With both a PHQ-9 and a
// GAD-7 result on record the user goes straight to chat, carrying the latest
// scores as prompt context; otherwise they are sent to the questionnaire.
func (s *AssessmentService) ChatFlow(userID int64) (*FlowDecision, error) {
	since := s.now().Add(-recentAssessmentWindow)
	recent, err := s.dbStore.GetRecentAssessments(userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent assessments: %w", err)
	}

	var latestPHQ9, latestGAD7 *store.Assessment
	for i := range recent {
		a := &recent[i]
		switch a.Type {
		case store.AssessmentPHQ9:
			if latestPHQ9 == nil {
				latestPHQ9 = a
			}
		case store.AssessmentGAD7:
			if latestGAD7 == nil {
				latestGAD7 = a
			}
		}
	}

	if latestPHQ9 != nil && latestGAD7 != nil {
		return &FlowDecision{
			Action: FlowNavigateToChat,
			Scores: &FlowScores{
				PHQ9Score: latestPHQ9.Score,
				GAD7Score: latestGAD7.Score,
			},
		}, nil
	}

	return &FlowDecision{Action: FlowNavigateToAssessment}, nil
}

// SeverityLevel bands a questionnaire score the way the intake UI presents
// it. Unknown types return an empty string.
func SeverityLevel(assessmentType string, score int) string {
	switch assessmentType {
	case store.AssessmentPHQ9:
		switch {
		case score <= 4:
			return "minimal"
		case score <= 9:
			return "mild"
		case score <= 14:
			return "moderate"
		case score <= 19:
			return "moderately severe"
		default:
			return "severe"
		}
	case store.AssessmentGAD7:
		switch {
		case score <= 4:
			return "minimal"
		case score <= 9:
			return "mild"
		case score <= 14:
			return "moderate"
		default:
			return "severe"
		}
	}
	return ""
}
