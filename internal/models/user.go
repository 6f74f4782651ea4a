package models

import "github.com/google/uuid"

// User is a registered account. Password holds the argon2id encoded hash once the
// record has been persisted; it is never serialized back to clients.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Password string    `json:"-"`
}
