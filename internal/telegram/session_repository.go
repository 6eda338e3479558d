package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/klaudiaxhika/grocer-ease-app/internal/importer"
)

// ImportSession parks an extracted recipe draft for a chat until the
// user confirms or discards it.
type ImportSession struct {
	ID        string
	ChatID    int64
	UserID    string
	Draft     importer.RecipeDraft
	SourceURL string
	CreatedAt time.Time
}

// SessionRepository provides access to import-session persistence.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new pending draft for a chat, replacing any older one.
func (sr *SessionRepository) Create(ctx context.Context, chatID int64, userID string, draft importer.RecipeDraft, sourceURL string) (*ImportSession, error) {
	jsonData, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft: %w", err)
	}

	// One pending draft per chat keeps the confirm flow unambiguous
	if _, err := sr.db.ExecContext(ctx, "DELETE FROM import_sessions WHERE chat_id = ?", chatID); err != nil {
		return nil, fmt.Errorf("failed to clear old sessions: %w", err)
	}

	session := &ImportSession{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		UserID:    userID,
		Draft:     draft,
		SourceURL: sourceURL,
		CreatedAt: time.Now().UTC(),
	}
	_, err = sr.db.ExecContext(ctx, `
		INSERT INTO import_sessions (id, chat_id, user_id, draft, source_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID, session.ChatID, session.UserID, string(jsonData), session.SourceURL, session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create import session: %w", err)
	}
	return session, nil
}

// GetByChat retrieves the pending draft for a chat, if any.
func (sr *SessionRepository) GetByChat(ctx context.Context, chatID int64) (*ImportSession, error) {
	var session ImportSession
	var draftJSON string
	err := sr.db.QueryRowContext(ctx, `
		SELECT id, chat_id, user_id, draft, source_url, created_at
		FROM import_sessions WHERE chat_id = ? ORDER BY created_at DESC LIMIT 1`, chatID,
	).Scan(&session.ID, &session.ChatID, &session.UserID, &draftJSON, &session.SourceURL, &session.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get import session: %w", err)
	}

	if err := json.Unmarshal([]byte(draftJSON), &session.Draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &session, nil
}

// Delete removes a session.
func (sr *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	_, err := sr.db.ExecContext(ctx, "DELETE FROM import_sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete import session: %w", err)
	}
	return nil
}

// CleanupExpired removes sessions older than the given age.
func (sr *SessionRepository) CleanupExpired(ctx context.Context, maxAge time.Duration) error {
	threshold := time.Now().UTC().Add(-maxAge)
	_, err := sr.db.ExecContext(ctx, "DELETE FROM import_sessions WHERE created_at < ?", threshold)
	if err != nil {
		return fmt.Errorf("failed to cleanup import sessions: %w", err)
	}
	return nil
}
