package store

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *SQLiteStore) *User {
	t.Helper()
	user, err := s.CreateUser("test-user", "hashed-password")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)

	created := createTestUser(t, s)
	if created.ExternalUserID != "test-user" {
		t.Errorf("external user id = %q, want test-user", created.ExternalUserID)
	}

	found, err := s.GetUserByExternalID("test-user")
	if err != nil {
		t.Fatalf("GetUserByExternalID failed: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Errorf("lookup returned %+v, want user %d", found, created.ID)
	}

	missing, err := s.GetUserByExternalID("nobody")
	if err != nil {
		t.Fatalf("GetUserByExternalID for missing user failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown user, got %+v", missing)
	}
}

func TestSessionOwnership(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)
	other, err := s.CreateUser("other-user", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	title := "a rough week"
	session, err := s.CreateSession(user.ID, &title)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	found, err := s.GetSessionByID(session.ID, user.ID)
	if err != nil {
		t.Fatalf("GetSessionByID failed: %v", err)
	}
	if found == nil || found.Title == nil || *found.Title != title {
		t.Errorf("session lookup = %+v, want title %q", found, title)
	}

	// Another user must not see the session.
	stolen, err := s.GetSessionByID(session.ID, other.ID)
	if err != nil {
		t.Fatalf("GetSessionByID for other user failed: %v", err)
	}
	if stolen != nil {
		t.Error("session visible to a non-owning user")
	}
}

func TestMessagesPersistInChronologicalOrder(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)
	session, err := s.CreateSession(user.ID, nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	exchanges := []struct {
		sender  string
		content string
	}{
		{SenderUser, "hello"},
		{SenderAI, "hi, how are you feeling today?"},
		{SenderUser, "a bit stressed"},
		{SenderAI, "that's understandable"},
	}

	for _, e := range exchanges {
		msg := Message{SessionID: session.ID, Sender: e.sender, Content: e.content}
		if err := s.CreateMessage(&msg); err != nil {
			t.Fatalf("CreateMessage(%q) failed: %v", e.content, err)
		}
		if msg.ID == "" {
			t.Fatal("CreateMessage did not assign an ID")
		}
		time.Sleep(2 * time.Millisecond) // distinct timestamps
	}

	messages, err := s.GetMessagesBySessionID(session.ID, 100, 0)
	if err != nil {
		t.Fatalf("GetMessagesBySessionID failed: %v", err)
	}
	if len(messages) != len(exchanges) {
		t.Fatalf("got %d messages, want %d", len(messages), len(exchanges))
	}
	for i, e := range exchanges {
		if messages[i].Sender != e.sender || messages[i].Content != e.content {
			t.Errorf("message %d = %s/%q, want %s/%q", i, messages[i].Sender, messages[i].Content, e.sender, e.content)
		}
	}
}

func TestEscalatedFlagRoundTrips(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)
	session, err := s.CreateSession(user.ID, nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	msg := Message{SessionID: session.ID, Sender: SenderAI, Content: "please call the hotline", Escalated: true}
	if err := s.CreateMessage(&msg); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	messages, err := s.GetMessagesBySessionID(session.ID, 10, 0)
	if err != nil {
		t.Fatalf("GetMessagesBySessionID failed: %v", err)
	}
	if len(messages) != 1 || !messages[0].Escalated {
		t.Errorf("escalated flag lost on round trip: %+v", messages)
	}
}

func TestGetRecentAssessmentsWindow(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)

	if _, err := s.CreateAssessment(user.ID, AssessmentPHQ9, 12); err != nil {
		t.Fatalf("CreateAssessment failed: %v", err)
	}
	if _, err := s.CreateAssessment(user.ID, AssessmentGAD7, 9); err != nil {
		t.Fatalf("CreateAssessment failed: %v", err)
	}

	// Backdate a third result beyond the lookup window.
	old := time.Now().Add(-30 * 24 * time.Hour)
	if _, err := s.db.Exec(
		"INSERT INTO assessments (id, user_id, type, score, created_at) VALUES (?, ?, ?, ?, ?)",
		"old-assessment", user.ID, AssessmentPHQ9, 20, old,
	); err != nil {
		t.Fatalf("failed to insert backdated assessment: %v", err)
	}

	since := time.Now().Add(-14 * 24 * time.Hour)
	recent, err := s.GetRecentAssessments(user.ID, since)
	if err != nil {
		t.Fatalf("GetRecentAssessments failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d recent assessments, want 2", len(recent))
	}
	for _, a := range recent {
		if a.ID == "old-assessment" {
			t.Error("backdated assessment leaked into the recent window")
		}
	}
}
