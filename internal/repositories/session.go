package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/justmusik/jmk/internal/models"
	"github.com/justmusik/jmk/internal/shared"
)

// SessionRepository persists the single local session row. It implements the
// session storage port: token and user are stored and cleared together.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a SessionRepository over the given database.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Load reads the persisted session. No row means no session (empty token, nil
// user, nil error). An unreadable user payload returns [shared.ErrInvalidSession]
// so the store can clear and continue unauthenticated.
func (r *SessionRepository) Load() (string, *models.User, error) {
	var token, userJSON string
	err := r.db.QueryRow("SELECT token, user_json FROM session WHERE id = 1").Scan(&token, &userJSON)
	if err == sql.ErrNoRows {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return "", nil, fmt.Errorf("%w: %v", shared.ErrInvalidSession, err)
	}

	return token, &user, nil
}

// Save writes the session row, replacing any existing one.
func (r *SessionRepository) Save(token string, user *models.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	query := `
		INSERT INTO session (id, token, user_json, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, user_json = excluded.user_json, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, token, string(userJSON), time.Now()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the session row. Clearing an empty table is not an error.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM session WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
