package store

import "time"

type User struct {
	ID             int64     `json:"id"`
	ExternalUserID string    `json:"external_user_id"`
	PasswordHash   string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt      time.Time `json:"created_at"`
}

type ChatSession struct {
	ID        string    `json:"id"` // UUID
	UserID    int64     `json:"user_id"`
	Title     *string   `json:"title"` // Nullable
	CreatedAt time.Time `json:"created_at"`
}

// Sender tags for chat messages.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

type Message struct {
	ID        string    `json:"id"` // UUID
	SessionID string    `json:"session_id"`
	Sender    string    `json:"sender"` // "user" or "ai"
	Content   string    `json:"content"`
	Escalated bool      `json:"escalated"`
	Timestamp time.Time `json:"timestamp"`
}

// Assessment types for the guided questionnaires.
const (
	AssessmentPHQ9 = "phq9"
	AssessmentGAD7 = "gad7"
)

type Assessment struct {
	ID        string    `json:"id"` // UUID
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"` // "phq9" or "gad7"
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
