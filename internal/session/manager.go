// Package session owns the authenticated session: token acquisition,
// claim decoding, persistence and the logout lifecycle. It is the only
// component allowed to mutate the transport's bearer token or the identity
// keys in persistent storage.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/sebaswvv/MazeBank/internal/storage"
	"github.com/sebaswvv/MazeBank/internal/transport"
	"github.com/sebaswvv/MazeBank/internal/validate"
	"github.com/sebaswvv/MazeBank/models"
)

// ErrNoSession is returned by RequireAuth when no token is held. Callers
// implementing a navigation gate redirect to their login entry point on it.
var ErrNoSession = errors.New("no active session")

// AuthError is a rejected login or register attempt. Session state is left
// unchanged when it is returned.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("authentication rejected: %s", e.Message)
	}
	return fmt.Sprintf("authentication rejected with status %d", e.Status)
}

// Manager holds the session and keeps storage, transport and derived
// identity consistent through login, register and logout.
type Manager struct {
	client *transport.Client
	store  storage.KeyStore

	mu       sync.RWMutex
	userID   int64
	loggedIn bool

	logoutHooks []func()
}

// NewManager restores any persisted session from the store. The manager must
// be constructed before any component that reads identity keys.
func NewManager(client *transport.Client, store storage.KeyStore) (*Manager, error) {
	m := &Manager{client: client, store: store}

	token, err := store.Get(storage.KeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read persisted token: %w", err)
	}
	if token == "" {
		return m, nil
	}

	raw, err := store.Get(storage.KeyUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to read persisted userId: %w", err)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Stored identity is inconsistent; drop it rather than resume a
		// half-valid session.
		_ = store.Clear()
		return m, nil
	}

	client.SetToken(token)
	m.userID = userID
	m.loggedIn = true
	return m, nil
}

// OnLogout registers a hook run on every logout. State containers holding
// user-identifying data register their reset here.
func (m *Manager) OnLogout(fn func()) {
	m.mu.Lock()
	m.logoutHooks = append(m.logoutHooks, fn)
	m.mu.Unlock()
}

// Login authenticates and establishes the session. On a rejected attempt an
// *AuthError is returned and no session state changes.
func (m *Manager) Login(ctx context.Context, req models.LoginRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}

	var resp models.AuthResponse
	if err := m.client.Post(ctx, "/auth/login", req, &resp, http.StatusOK); err != nil {
		return authFailure(err)
	}
	return m.establish(resp.AuthenticationToken)
}

// Register creates a new user; the server answers 201 with a token, so the
// post-conditions are identical to Login.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}

	var resp models.AuthResponse
	if err := m.client.Post(ctx, "/auth/register", req, &resp, http.StatusCreated); err != nil {
		return authFailure(err)
	}
	return m.establish(resp.AuthenticationToken)
}

// establish persists the token, decodes its userId claim and propagates the
// bearer header. The userId is never taken from anywhere but the token.
func (m *Manager) establish(token string) error {
	claims, err := DecodeClaims(token)
	if err != nil {
		return err
	}

	if err := m.store.Set(storage.KeyToken, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := m.store.Set(storage.KeyUserID, strconv.FormatInt(claims.UserID, 10)); err != nil {
		return fmt.Errorf("failed to persist userId: %w", err)
	}

	m.client.SetToken(token)

	m.mu.Lock()
	m.userID = claims.UserID
	m.loggedIn = true
	m.mu.Unlock()
	return nil
}

// Logout clears persisted identity, the bearer header and all derived state.
// It is idempotent and resets in-memory state even when the store fails.
func (m *Manager) Logout() error {
	err := m.store.Clear()

	m.client.SetToken("")

	m.mu.Lock()
	m.userID = 0
	m.loggedIn = false
	hooks := m.logoutHooks
	m.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	if err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	return nil
}

// UserID returns the id decoded from the token, 0 when logged out.
func (m *Manager) UserID() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userID
}

// IsLoggedIn reports whether a session is established.
func (m *Manager) IsLoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loggedIn
}

// RequireAuth returns ErrNoSession when no session is established.
func (m *Manager) RequireAuth() error {
	if !m.IsLoggedIn() {
		return ErrNoSession
	}
	return nil
}

// authFailure maps a transport error on an auth endpoint to *AuthError,
// keeping transport-level failures (timeouts etc.) intact.
func authFailure(err error) error {
	var apiErr *transport.APIError
	if errors.As(err, &apiErr) {
		return &AuthError{Status: apiErr.Status, Message: apiErr.Message}
	}
	return err
}
