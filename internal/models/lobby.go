// internal/models/lobby.go
package models

import "github.com/google/uuid"

// LobbyStatus is the lifecycle phase of a lobby. Transitions are one-directional:
// waiting -> ready -> in_progress.
type LobbyStatus string

const (
	StatusWaiting    LobbyStatus = "waiting"
	StatusReady      LobbyStatus = "ready"
	StatusInProgress LobbyStatus = "in_progress"
)

// LobbyCapacity is the fixed seat count: battleship is strictly head-to-head.
const LobbyCapacity = 2

// Lobby represents a pre-game session container identified by a short join code.
// Players is insertion-ordered; the first entry is always the host.
type Lobby struct {
	Code    string      `json:"code"`
	Players []uuid.UUID `json:"players"`
	Status  LobbyStatus `json:"status"`
}

// HostID returns the creating user's ID, or uuid.Nil for a malformed record.
func (l *Lobby) HostID() uuid.UUID {
	if len(l.Players) == 0 {
		return uuid.Nil
	}
	return l.Players[0]
}

// HasPlayer reports whether the given user holds a seat in the lobby.
func (l *Lobby) HasPlayer(id uuid.UUID) bool {
	for _, p := range l.Players {
		if p == id {
			return true
		}
	}
	return false
}

// Full reports whether both seats are taken.
func (l *Lobby) Full() bool {
	return len(l.Players) >= LobbyCapacity
}
