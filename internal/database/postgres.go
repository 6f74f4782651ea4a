// internal/database/postgres.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkarlsen/broadside/internal/lobby"
	"github.com/mkarlsen/broadside/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	username TEXT NOT NULL,
	password TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS lobbies (
	code TEXT PRIMARY KEY,
	players TEXT[] NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// uniqueViolation is the postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// Postgres backs the user directory and lobby store with a pgx pool. It is
// opened once at process start and closed at shutdown.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect opens the pool, verifies connectivity, and bootstraps the schema.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Insert persists a new lobby, mapping a code collision to lobby.ErrCodeTaken.
func (p *Postgres) Insert(ctx context.Context, l *models.Lobby) error {
	q := `INSERT INTO lobbies (code, players, status) VALUES ($1, $2, $3)`
	err := pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q, l.Code, encodePlayers(l.Players), string(l.Status))
		return execErr
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return lobby.ErrCodeTaken
		}
		return fmt.Errorf("failed to insert lobby: %w", err)
	}
	return nil
}

// Get fetches a lobby snapshot by code.
func (p *Postgres) Get(ctx context.Context, code string) (*models.Lobby, error) {
	q := `SELECT code, players, status FROM lobbies WHERE code = $1`
	l, err := scanLobby(p.pool.QueryRow(ctx, q, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, lobby.ErrNotFound
	}
	return l, err
}

// Exists reports whether a live lobby holds the given code.
func (p *Postgres) Exists(ctx context.Context, code string) (bool, error) {
	var one int
	err := p.pool.QueryRow(ctx, `SELECT 1 FROM lobbies WHERE code = $1`, code).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CompareAndSet runs mutate inside a transaction holding the lobby's row lock.
// The row is re-read under SELECT ... FOR UPDATE, so the expected-status check
// and the write are a single atomic step with respect to concurrent callers.
func (p *Postgres) CompareAndSet(ctx context.Context, code string, expected models.LobbyStatus, mutate func(*models.Lobby) error) error {
	return pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `SELECT code, players, status FROM lobbies WHERE code = $1 FOR UPDATE`
		l, err := scanLobby(tx.QueryRow(ctx, q, code))
		if errors.Is(err, pgx.ErrNoRows) {
			return lobby.ErrNotFound
		}
		if err != nil {
			return err
		}
		if l.Status != expected {
			return lobby.ErrConflict
		}
		if err := mutate(l); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE lobbies SET players = $2, status = $3 WHERE code = $1`,
			code, encodePlayers(l.Players), string(l.Status),
		)
		return err
	})
}

func scanLobby(row pgx.Row) (*models.Lobby, error) {
	var (
		l       models.Lobby
		players []string
		status  string
	)
	if err := row.Scan(&l.Code, &players, &status); err != nil {
		return nil, err
	}
	decoded, err := decodePlayers(players)
	if err != nil {
		return nil, err
	}
	l.Players = decoded
	l.Status = models.LobbyStatus(status)
	return &l, nil
}

// Players are stored as a TEXT[] of canonical UUID strings to keep the column
// portable across pgx codec versions.
func encodePlayers(players []uuid.UUID) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.String()
	}
	return out
}

func decodePlayers(raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(raw))
	for i, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("corrupt player id %q: %w", s, err)
		}
		out[i] = id
	}
	return out, nil
}
