// internal/database/memory.go
package database

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mkarlsen/broadside/internal/auth"
	"github.com/mkarlsen/broadside/internal/lobby"
	"github.com/mkarlsen/broadside/internal/models"
)

// Memory is a mutex-guarded in-memory implementation of the same store surface
// as Postgres. It carries the full compare-and-set semantics, so tests exercise
// real race behavior; state is lost on restart.
type Memory struct {
	mu      sync.Mutex
	lobbies map[string]*models.Lobby
	users   map[uuid.UUID]*models.User
	emails  map[string]uuid.UUID
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		lobbies: make(map[string]*models.Lobby),
		users:   make(map[uuid.UUID]*models.User),
		emails:  make(map[string]uuid.UUID),
	}
}

// Insert persists a new lobby, rejecting duplicate codes.
func (m *Memory) Insert(ctx context.Context, l *models.Lobby) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lobbies[l.Code]; ok {
		return lobby.ErrCodeTaken
	}
	m.lobbies[l.Code] = copyLobby(l)
	return nil
}

// Get returns a snapshot of the lobby so callers cannot mutate stored state
// outside CompareAndSet.
func (m *Memory) Get(ctx context.Context, code string) (*models.Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lobbies[code]
	if !ok {
		return nil, lobby.ErrNotFound
	}
	return copyLobby(l), nil
}

// Exists reports whether a lobby holds the code.
func (m *Memory) Exists(ctx context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lobbies[code]
	return ok, nil
}

// CompareAndSet applies mutate under the store mutex iff the current status
// matches expected. A mutate error leaves the stored record untouched.
func (m *Memory) CompareAndSet(ctx context.Context, code string, expected models.LobbyStatus, mutate func(*models.Lobby) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.lobbies[code]
	if !ok {
		return lobby.ErrNotFound
	}
	if cur.Status != expected {
		return lobby.ErrConflict
	}
	next := copyLobby(cur)
	if err := mutate(next); err != nil {
		return err
	}
	m.lobbies[code] = next
	return nil
}

// CreateUser hashes the password and stores the account.
func (m *Memory) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.emails[user.Email]; ok {
		return ErrEmailTaken
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = hash

	u := *user
	m.users[u.ID] = &u
	m.emails[u.Email] = u.ID
	return nil
}

// GetUserByEmail fetches an account by email for login.
func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.emails[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *m.users[id]
	return &u, nil
}

// Resolve maps a user ID to a display name.
func (m *Memory) Resolve(ctx context.Context, id uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return "", lobby.ErrUnknownUser
	}
	return u.Username, nil
}

// DeleteUser removes an account, leaving any lobby seats dangling. Exercised by
// tests covering the soft-fail identity path.
func (m *Memory) DeleteUser(ctx context.Context, id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		delete(m.emails, u.Email)
		delete(m.users, id)
	}
}

func copyLobby(l *models.Lobby) *models.Lobby {
	cp := *l
	cp.Players = append([]uuid.UUID(nil), l.Players...)
	return &cp
}
