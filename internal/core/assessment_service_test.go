package core

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/s4ik/mental-health-hub/internal/store"
)

func newTestAssessmentService(t *testing.T) (*AssessmentService, int64) {
	t.Helper()
	dbStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { dbStore.Close() })

	user, err := dbStore.CreateUser("assessment-test-user", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return NewAssessmentService(dbStore), user.ID
}

func TestRecordAssessmentValidation(t *testing.T) {
	svc, userID := newTestAssessmentService(t)

	tests := []struct {
		name           string
		assessmentType string
		score          int
		wantErr        bool
	}{
		{"valid phq9", store.AssessmentPHQ9, 12, false},
		{"phq9 upper bound", store.AssessmentPHQ9, 27, false},
		{"phq9 over max", store.AssessmentPHQ9, 28, true},
		{"valid gad7", store.AssessmentGAD7, 0, false},
		{"gad7 upper bound", store.AssessmentGAD7, 21, false},
		{"gad7 over max", store.AssessmentGAD7, 22, true},
		{"negative score", store.AssessmentGAD7, -1, true},
		{"unknown type", "dass21", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordAssessment(userID, tt.assessmentType, tt.score)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAssessment) {
					t.Errorf("expected ErrInvalidAssessment, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestChatFlowRequiresBothAssessments(t *testing.T) {
	svc, userID := newTestAssessmentService(t)

	decision, err := svc.ChatFlow(userID)
	if err != nil {
		t.Fatalf("ChatFlow failed: %v", err)
	}
	if decision.Action != FlowNavigateToAssessment {
		t.Errorf("action = %q with no assessments, want %q", decision.Action, FlowNavigateToAssessment)
	}

	if _, err := svc.RecordAssessment(userID, store.AssessmentPHQ9, 8); err != nil {
		t.Fatalf("RecordAssessment failed: %v", err)
	}
	decision, err = svc.ChatFlow(userID)
	if err != nil {
		t.Fatalf("ChatFlow failed: %v", err)
	}
	if decision.Action != FlowNavigateToAssessment {
		t.Errorf("action = %q with only a PHQ-9 result, want %q", decision.Action, FlowNavigateToAssessment)
	}

	if _, err := svc.RecordAssessment(userID, store.AssessmentGAD7, 6); err != nil {
		t.Fatalf("RecordAssessment failed: %v", err)
	}
	decision, err = svc.ChatFlow(userID)
	if err != nil {
		t.Fatalf("ChatFlow failed: %v", err)
	}
	if decision.Action != FlowNavigateToChat {
		t.Fatalf("action = %q with both results, want %q", decision.Action, FlowNavigateToChat)
	}
	if decision.Scores == nil || decision.Scores.PHQ9Score != 8 || decision.Scores.GAD7Score != 6 {
		t.Errorf("scores = %+v, want phq9 8 and gad7 6", decision.Scores)
	}
}

func TestChatFlowIgnoresStaleAssessments(t *testing.T) {
	svc, userID := newTestAssessmentService(t)

	if _, err := svc.RecordAssessment(userID, store.AssessmentPHQ9, 8); err != nil {
		t.Fatalf("RecordAssessment failed: %v", err)
	}
	if _, err := svc.RecordAssessment(userID, store.AssessmentGAD7, 6); err != nil {
		t.Fatalf("RecordAssessment failed: %v", err)
	}

	// Pretend 15 days have passed since the results were recorded.
	svc.now = func() time.Time { return time.Now().Add(15 * 24 * time.Hour) }

	decision, err := svc.ChatFlow(userID)
	if err != nil {
		t.Fatalf("ChatFlow failed: %v", err)
	}
	if decision.Action != FlowNavigateToAssessment {
		t.Errorf("action = %q with stale results, want %q", decision.Action, FlowNavigateToAssessment)
	}
}

func TestSeverityLevel(t *testing.T) {
	tests := []struct {
		assessmentType string
		score          int
		want           string
	}{
		{store.AssessmentPHQ9, 0, "minimal"},
		{store.AssessmentPHQ9, 4, "minimal"},
		{store.AssessmentPHQ9, 5, "mild"},
		{store.AssessmentPHQ9, 10, "moderate"},
		{store.AssessmentPHQ9, 15, "moderately severe"},
		{store.AssessmentPHQ9, 20, "severe"},
		{store.AssessmentPHQ9, 27, "severe"},
		{store.AssessmentGAD7, 4, "minimal"},
		{store.AssessmentGAD7, 9, "mild"},
		{store.AssessmentGAD7, 14, "moderate"},
		{store.AssessmentGAD7, 15, "severe"},
		{"dass21", 10, ""},
	}

	for _, tt := range tests {
		if got := SeverityLevel(tt.assessmentType, tt.score); got != tt.want {
			t.Errorf("SeverityLevel(%q, %d) = %q, want %q", tt.assessmentType, tt.score, got, tt.want)
		}
	}
}
