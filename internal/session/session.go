// Package session holds the authenticated user's identity and bearer token.
//
// The [Store] is the process-wide session state: it restores a persisted
// session on startup, performs login/register/logout against the auth service,
// and implements [oauth2.TokenSource] so the API gateway always reads the most
// recently written token. It also subscribes to the gateway's unauthorized
// hook; a 401 anywhere tears the session down.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/justmusik/jmk/internal/models"
	"github.com/justmusik/jmk/internal/services"
	"github.com/justmusik/jmk/internal/shared"
	"golang.org/x/oauth2"
)

// Storage is the persistence port for session state. Token and user are always
// written and cleared together, never independently.
type Storage interface {
	Load() (token string, user *models.User, err error)
	Save(token string, user *models.User) error
	Clear() error
}

// Store holds the current session. Consumers must call [Store.Restore] before
// rendering protected views; [Store.Ready] gates until then.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	auth    *services.AuthService
	logger  *log.Logger

	user  *models.User
	token string
	ready bool
}

// NewStore creates a session store over the given storage and auth service.
func NewStore(storage Storage, auth *services.AuthService, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{storage: storage, auth: auth, logger: logger}
}

// Restore loads a persisted session if one exists. A corrupt persisted payload
// clears both token and user and starts unauthenticated rather than failing.
func (s *Store) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, user, err := s.storage.Load()
	if err != nil {
		if errors.Is(err, shared.ErrInvalidSession) {
			s.logger.Warn("persisted session unreadable, clearing", "err", err)
			if cerr := s.storage.Clear(); cerr != nil {
				s.logger.Warn("failed to clear session storage", "err", cerr)
			}
			s.ready = true
			return nil
		}
		return fmt.Errorf("failed to restore session: %w", err)
	}

	if token != "" && user != nil {
		s.token = token
		s.user = user
	}
	s.ready = true
	return nil
}

// Login exchanges credentials for a session and persists it. On failure the
// session remains unset and the server-supplied message is returned.
func (s *Store) Login(ctx context.Context, creds models.Credentials) error {
	resp, err := s.auth.SignIn(ctx, creds)
	if err != nil {
		var apiErr *services.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return fmt.Errorf("%w: %s", shared.ErrAuthFailed, apiErr.Message)
		}
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	user := resp.User()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Save(resp.Token, user); err != nil {
		// The session still works for this process; it just won't survive a restart.
		s.logger.Warn("failed to persist session", "err", err)
	}
	s.token = resp.Token
	s.user = user
	return nil
}

// Register creates a new account. It does not log the new user in.
func (s *Store) Register(ctx context.Context, reg models.Registration) error {
	if err := s.auth.SignUp(ctx, reg); err != nil {
		var apiErr *services.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return fmt.Errorf("registration failed: %s", apiErr.Message)
		}
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

// Logout clears the persisted and in-memory session. Safe to call repeatedly.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// HandleUnauthorized is the gateway's 401 hook: the token was rejected, so the
// session is torn down regardless of which call tripped it.
func (s *Store) HandleUnauthorized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" && s.user == nil {
		return
	}
	s.logger.Warn("session rejected by server, logging out")
	s.clearLocked()
}

func (s *Store) clearLocked() {
	if err := s.storage.Clear(); err != nil {
		s.logger.Warn("failed to clear session storage", "err", err)
	}
	s.token = ""
	s.user = nil
}

// Current returns the authenticated user, or nil when signed out.
func (s *Store) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Ready reports whether [Store.Restore] has completed.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Token implements [oauth2.TokenSource]. It never errors; an empty AccessToken
// means no session, and the gateway sends the request unauthenticated.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &oauth2.Token{AccessToken: s.token}, nil
}

var _ oauth2.TokenSource = (*Store)(nil)
