// internal/lobby/service.go
package lobby

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/mkarlsen/broadside/internal/models"
)

// Service implements the lobby lifecycle: create, join, start, status. It is
// stateless between calls; every race funnels through the store's CompareAndSet,
// and a lost race surfaces as a normal domain error, never as a raw conflict.
type Service struct {
	store Store
	ids   IdentityLookup
	games GameNotifier
}

// NewService wires the service to its store and identity lookup. games may be
// nil, in which case the start handoff is skipped.
func NewService(store Store, ids IdentityLookup, games GameNotifier) *Service {
	return &Service{store: store, ids: ids, games: games}
}

// JoinResult is returned on a successful join; Host carries the creator's
// display name for the client UI.
type JoinResult struct {
	Code string `json:"code"`
	Host string `json:"host"`
}

// PlayerInfo pairs a seat holder's ID with their resolved display name.
type PlayerInfo struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// StatusResult is the snapshot returned by GetStatus.
type StatusResult struct {
	Status   models.LobbyStatus `json:"status"`
	Players  []PlayerInfo       `json:"players"`
	Opponent string             `json:"opponent,omitempty"`
}

// CreateLobby allocates a fresh code and persists a waiting lobby with uid as
// host. An insert collision is reported as a retryable store error; with a
// 36^6 code space it effectively never happens.
func (s *Service) CreateLobby(ctx context.Context, uid uuid.UUID) (string, error) {
	code, err := GenerateCode(ctx, s.store)
	if err != nil {
		return "", storeError(err)
	}

	l := &models.Lobby{
		Code:    code,
		Players: []uuid.UUID{uid},
		Status:  models.StatusWaiting,
	}
	if err := s.store.Insert(ctx, l); err != nil {
		return "", storeError(err)
	}
	return code, nil
}

// JoinLobby seats uid as the second player of a waiting lobby and moves it to
// ready. Exactly one of two concurrent joins can win: the append happens inside
// CompareAndSet, and the loser's conflict is re-read and reported as the domain
// error the caller would have seen had it arrived later.
func (s *Service) JoinLobby(ctx context.Context, uid uuid.UUID, code string) (*JoinResult, error) {
	l, err := s.fetch(ctx, code)
	if err != nil {
		return nil, err
	}
	if rejectErr := rejectJoin(l, uid); rejectErr != nil {
		return nil, rejectErr
	}

	err = s.store.CompareAndSet(ctx, code, models.StatusWaiting, func(cur *models.Lobby) error {
		// Re-check under the store's atomicity guarantee: the snapshot above
		// may be stale by the time the mutation runs.
		if rejectErr := rejectJoin(cur, uid); rejectErr != nil {
			return rejectErr
		}
		cur.Players = append(cur.Players, uid)
		cur.Status = models.StatusReady
		return nil
	})
	if err != nil {
		return nil, s.translateJoinFailure(ctx, uid, code, err)
	}

	host, err := s.resolveHost(ctx, l.HostID())
	if err != nil {
		return nil, err
	}
	return &JoinResult{Code: code, Host: host}, nil
}

// rejectJoin applies the join preconditions against a lobby snapshot.
func rejectJoin(l *models.Lobby, uid uuid.UUID) *Error {
	if l.HasPlayer(uid) {
		return newError(KindInvalidState, "you are already in this lobby")
	}
	if l.Status != models.StatusWaiting {
		return newError(KindInvalidState, "game already in progress")
	}
	if l.Full() {
		// Defensive: waiting implies one seat taken, but never trust it.
		return newError(KindFull, "lobby is full")
	}
	return nil
}

// translateJoinFailure maps a failed CompareAndSet into the caller-facing
// domain error, re-reading current state on a lost race.
func (s *Service) translateJoinFailure(ctx context.Context, uid uuid.UUID, code string, err error) error {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return newError(KindNotFound, "lobby not found")
	case errors.Is(err, ErrConflict):
		cur, getErr := s.fetch(ctx, code)
		if getErr != nil {
			return getErr
		}
		if rejectErr := rejectJoin(cur, uid); rejectErr != nil {
			return rejectErr
		}
		// The precondition failed yet the lobby reads as joinable again; only
		// possible if statuses regressed, which the store forbids.
		return storeError(err)
	default:
		return storeError(err)
	}
}

// StartGame moves a ready lobby to in_progress. Only a seated player may start,
// and of two concurrent starts exactly one wins; the other observes the lobby
// as already started.
func (s *Service) StartGame(ctx context.Context, uid uuid.UUID, code string) error {
	l, err := s.fetch(ctx, code)
	if err != nil {
		return err
	}
	if !l.HasPlayer(uid) {
		return newError(KindForbidden, "you are not in this lobby")
	}
	if l.Status != models.StatusReady {
		return startStateError(l.Status)
	}

	var started *models.Lobby
	err = s.store.CompareAndSet(ctx, code, models.StatusReady, func(cur *models.Lobby) error {
		cur.Status = models.StatusInProgress
		started = cur
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return newError(KindNotFound, "lobby not found")
		case errors.Is(err, ErrConflict):
			cur, getErr := s.fetch(ctx, code)
			if getErr != nil {
				return getErr
			}
			return startStateError(cur.Status)
		default:
			return storeError(err)
		}
	}

	if s.games != nil {
		// Handoff to the rules engine is best-effort; the transition stands
		// even if the publish fails.
		if pubErr := s.games.GameStarted(ctx, code, started.Players); pubErr != nil {
			log.Printf("lobby %s: failed to publish game start: %v", code, pubErr)
		}
	}
	return nil
}

func startStateError(status models.LobbyStatus) *Error {
	if status == models.StatusInProgress {
		return newError(KindInvalidState, "game already started")
	}
	return newError(KindInvalidState, "lobby is not ready to start")
}

// GetStatus returns the lobby snapshot visible to a seated player. Display-name
// resolution is best-effort: a player whose account no longer resolves is
// omitted rather than failing the whole view.
func (s *Service) GetStatus(ctx context.Context, uid uuid.UUID, code string) (*StatusResult, error) {
	l, err := s.fetch(ctx, code)
	if err != nil {
		return nil, err
	}
	if !l.HasPlayer(uid) {
		return nil, newError(KindForbidden, "you are not in this lobby")
	}

	res := &StatusResult{Status: l.Status, Players: []PlayerInfo{}}
	for _, pid := range l.Players {
		name, resolveErr := s.ids.Resolve(ctx, pid)
		if resolveErr != nil {
			continue
		}
		res.Players = append(res.Players, PlayerInfo{ID: pid, Username: name})
		if pid != uid {
			res.Opponent = name
		}
	}
	return res, nil
}

// fetch loads a lobby and normalizes store failures into domain errors. A
// malformed code can never match a stored lobby, so it short-circuits to
// not-found without touching the store.
func (s *Service) fetch(ctx context.Context, code string) (*models.Lobby, error) {
	if !ValidCode(code) {
		return nil, newError(KindNotFound, "lobby not found")
	}
	l, err := s.store.Get(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newError(KindNotFound, "lobby not found")
		}
		return nil, storeError(err)
	}
	return l, nil
}

// resolveHost resolves the host's display name for the join response. An
// unknown host account degrades to an empty name; infrastructure failures
// propagate as store errors.
func (s *Service) resolveHost(ctx context.Context, hostID uuid.UUID) (string, error) {
	name, err := s.ids.Resolve(ctx, hostID)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return "", nil
		}
		return "", storeError(err)
	}
	return name, nil
}
