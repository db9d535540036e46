package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/s4ik/mental-health-hub/internal/store"
)

// ErrSessionNotFound indicates the session does not exist or is not owned by
// the requesting user.
var ErrSessionNotFound = errors.New("session not found")

const sessionTitleMaxLen = 48

// ChatService records conversations: it resolves the session, runs each user
// message through triage, and persists both sides of the exchange in order.
type ChatService struct {
	dbStore *store.SQLiteStore
	triage  *TriageService
}

func NewChatService(db *store.SQLiteStore, triage *TriageService) *ChatService {
	return &ChatService{
		dbStore: db,
		triage:  triage,
	}
}

func (s *ChatService) GetUserByExternalID(externalUserID string) (*store.User, error) {
	return s.dbStore.GetUserByExternalID(externalUserID)
}

func (s *ChatService) CreateUser(externalUserID, passwordHash string) (*store.User, error) {
	return s.dbStore.CreateUser(externalUserID, passwordHash)
}

// PostMessage handles one inbound chat message. An empty sessionID starts a
// new session lazily, titled from the first message. Nothing is persisted
// until triage has fully determined a result, so a cancelled request leaves
// no partial exchange behind.
func (s *ChatService) PostMessage(ctx context.Context, sessionID string, userID int64, content string, scores *AssessmentScores) (*store.ChatSession, *store.Message, error) {
	var session *store.ChatSession

	if sessionID != "" {
		existing, err := s.dbStore.GetSessionByID(sessionID, userID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to verify session: %w", err)
		}
		if existing == nil {
			return nil, nil, ErrSessionNotFound
		}
		session = existing
	}

	result := s.triage.Handle(ctx, content, scores)
	if err := ctx.Err(); err != nil {
		// Caller went away mid-request; don't write half an exchange.
		return nil, nil, fmt.Errorf("request aborted before persisting exchange: %w", err)
	}

	if session == nil {
		title := sessionTitle(content)
		created, err := s.dbStore.CreateSession(userID, &title)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create session: %w", err)
		}
		session = created
	}

	userMsg := store.Message{
		SessionID: session.ID,
		Sender:    store.SenderUser,
		Content:   content,
	}
	if err := s.dbStore.CreateMessage(&userMsg); err != nil {
		return nil, nil, fmt.Errorf("failed to store user message: %w", err)
	}

	aiMsg := store.Message{
		SessionID: session.ID,
		Sender:    store.SenderAI,
		Content:   result.Content,
		Escalated: result.Escalated,
	}
	if err := s.dbStore.CreateMessage(&aiMsg); err != nil {
		// The user message is already down; surface the fault rather than
		// answer with an unrecorded reply.
		log.Printf("Failed to store AI message for session %s: %v", session.ID, err)
		return nil, nil, fmt.Errorf("failed to store AI message: %w", err)
	}

	return session, &aiMsg, nil
}

func (s *ChatService) GetSessions(userID int64) ([]store.ChatSession, error) {
	return s.dbStore.GetSessionsByUserID(userID)
}

func (s *ChatService) GetSessionDetails(sessionID string, userID int64) (*store.ChatSession, []store.Message, error) {
	session, err := s.dbStore.GetSessionByID(sessionID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}

	messages, err := s.dbStore.GetMessagesBySessionID(sessionID, 100, 0) // Get up to 100 messages
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get messages for session: %w", err)
	}
	return session, messages, nil
}

// sessionTitle derives a fixed title from the first message of a session.
// Sessions are never retitled afterwards.
func sessionTitle(firstMessage string) string {
	title := strings.Join(strings.Fields(firstMessage), " ")
	if title == "" {
		return "New conversation"
	}
	if runes := []rune(title); len(runes) > sessionTitleMaxLen {
		title = strings.TrimSpace(string(runes[:sessionTitleMaxLen])) + "..."
	}
	return title
}
