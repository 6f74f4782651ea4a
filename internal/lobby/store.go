// internal/lobby/store.go
package lobby

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkarlsen/broadside/internal/models"
)

// Store is the durable keyed storage the service coordinates through. All
// cross-request synchronization lives behind CompareAndSet; the service holds
// no lobby state of its own between calls.
type Store interface {
	// Insert persists a new lobby. Returns ErrCodeTaken if the code is already live.
	Insert(ctx context.Context, l *models.Lobby) error

	// Get fetches a lobby snapshot by code. Returns ErrNotFound if absent.
	Get(ctx context.Context, code string) (*models.Lobby, error)

	// Exists reports whether a live lobby holds the code. Used by the code
	// generator so that store consistency stays the single source of truth.
	Exists(ctx context.Context, code string) (bool, error)

	// CompareAndSet applies mutate atomically iff the lobby's current status
	// equals expected. Returns ErrNotFound if the lobby is gone, ErrConflict if
	// the status precondition fails, or any error returned by mutate itself.
	// Implementations must guarantee that concurrent callers serialize: of two
	// racing calls with the same expected status, at most one applies.
	CompareAndSet(ctx context.Context, code string, expected models.LobbyStatus, mutate func(*models.Lobby) error) error
}

// IdentityLookup resolves an opaque user ID to a display name. Returns
// ErrUnknownUser for stale or deleted accounts.
type IdentityLookup interface {
	Resolve(ctx context.Context, id uuid.UUID) (string, error)
}

// GameNotifier receives the handoff when a lobby transitions to in_progress.
// The rules engine consumes these records out of band; publish failures must
// not fail the start itself.
type GameNotifier interface {
	GameStarted(ctx context.Context, code string, players []uuid.UUID) error
}
