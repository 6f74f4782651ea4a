// internal/database/user.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mkarlsen/broadside/internal/auth"
	"github.com/mkarlsen/broadside/internal/lobby"
	"github.com/mkarlsen/broadside/internal/models"
)

// ErrEmailTaken means registration collided with an existing account email.
var ErrEmailTaken = errors.New("email already registered")

// ErrUserNotFound means no account matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// CreateUser hashes the password, assigns an ID if missing, and inserts the
// account row.
func (p *Postgres) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}

	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hash

	q := `INSERT INTO users (id, email, username, password) VALUES ($1, $2, $3, $4)`
	err = pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q, user.ID, user.Email, user.Username, user.Password)
		return execErr
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByEmail fetches an account by email for login.
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	q := `SELECT id, email, username, password FROM users WHERE email = $1`
	err := p.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.Username, &u.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Resolve maps a user ID to a display name for lobby views.
func (p *Postgres) Resolve(ctx context.Context, id uuid.UUID) (string, error) {
	var username string
	err := p.pool.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, id).Scan(&username)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", lobby.ErrUnknownUser
	}
	if err != nil {
		return "", err
	}
	return username, nil
}
