package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        external_user_id TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS chat_sessions (
        id TEXT PRIMARY KEY, -- UUID
        user_id INTEGER NOT NULL,
        title TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS chat_messages (
        id TEXT PRIMARY KEY, -- UUID
        session_id TEXT NOT NULL,
        sender TEXT NOT NULL CHECK (sender IN ('user', 'ai')),
        content TEXT NOT NULL,
        escalated BOOLEAN DEFAULT FALSE,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (session_id) REFERENCES chat_sessions (id)
    );

    CREATE TABLE IF NOT EXISTS assessments (
        id TEXT PRIMARY KEY, -- UUID
        user_id INTEGER NOT NULL,
        type TEXT NOT NULL CHECK (type IN ('phq9', 'gad7')),
        score INTEGER NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods
func (s *SQLiteStore) GetUserByExternalID(externalUserID string) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, external_user_id, password_hash, created_at FROM users WHERE external_user_id = ?", externalUserID).Scan(&user.ID, &user.ExternalUserID, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) CreateUser(externalUserID, passwordHash string) (*User, error) {
	res, err := s.db.Exec("INSERT INTO users (external_user_id, password_hash) VALUES (?, ?)", externalUserID, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.getUserByID(id)
}

func (s *SQLiteStore) getUserByID(id int64) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, external_user_id, password_hash, created_at FROM users WHERE id = ?", id).Scan(&user.ID, &user.ExternalUserID, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// Session methods
func (s *SQLiteStore) CreateSession(userID int64, title *string) (*ChatSession, error) {
	sessionID := uuid.NewString()
	stmt, err := s.db.Prepare("INSERT INTO chat_sessions (id, user_id, title, created_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare session insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	_, err = stmt.Exec(sessionID, userID, title, now)
	if err != nil {
		return nil, fmt.Errorf("failed to execute session insert: %w", err)
	}
	return &ChatSession{ID: sessionID, UserID: userID, Title: title, CreatedAt: now}, nil
}

func (s *SQLiteStore) GetSessionByID(sessionID string, userID int64) (*ChatSession, error) {
	var session ChatSession
	var title sql.NullString
	err := s.db.QueryRow("SELECT id, user_id, title, created_at FROM chat_sessions WHERE id = ? AND user_id = ?", sessionID, userID).Scan(&session.ID, &session.UserID, &title, &session.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if title.Valid {
		session.Title = &title.String
	}
	return &session, nil
}

func (s *SQLiteStore) GetSessionsByUserID(userID int64) ([]ChatSession, error) {
	rows, err := s.db.Query("SELECT id, user_id, title, created_at FROM chat_sessions WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []ChatSession
	for rows.Next() {
		var session ChatSession
		var title sql.NullString
		if err := rows.Scan(&session.ID, &session.UserID, &title, &session.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		if title.Valid {
			session.Title = &title.String
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Message methods
func (s *SQLiteStore) CreateMessage(msg *Message) error {
	msg.ID = uuid.NewString() // Ensure ID is set
	msg.Timestamp = time.Now()

	stmt, err := s.db.Prepare("INSERT INTO chat_messages (id, session_id, sender, content, escalated, timestamp) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(msg.ID, msg.SessionID, msg.Sender, msg.Content, msg.Escalated, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to execute message insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetMessagesBySessionID(sessionID string, limit int, offset int) ([]Message, error) {
	query := "SELECT id, session_id, sender, content, escalated, timestamp FROM chat_messages WHERE session_id = ? ORDER BY timestamp ASC LIMIT ? OFFSET ?"
	rows, err := s.db.Query(query, sessionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Sender, &msg.Content, &msg.Escalated, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Assessment methods
func (s *SQLiteStore) CreateAssessment(userID int64, assessmentType string, score int) (*Assessment, error) {
	assessment := Assessment{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      assessmentType,
		Score:     score,
		CreatedAt: time.Now(),
	}

	stmt, err := s.db.Prepare("INSERT INTO assessments (id, user_id, type, score, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare assessment insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(assessment.ID, assessment.UserID, assessment.Type, assessment.Score, assessment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to execute assessment insert: %w", err)
	}
	return &assessment, nil
}

// GetRecentAssessments returns the user's assessments created after the given
// time, newest first.
func (s *SQLiteStore) GetRecentAssessments(userID int64, since time.Time) ([]Assessment, error) {
	query := "SELECT id, user_id, type, score, created_at FROM assessments WHERE user_id = ? AND created_at >= ? ORDER BY created_at DESC"
	rows, err := s.db.Query(query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var assessments []Assessment
	for rows.Next() {
		var a Assessment
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Score, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assessment row: %w", err)
		}
		assessments = append(assessments, a)
	}
	return assessments, nil
}
