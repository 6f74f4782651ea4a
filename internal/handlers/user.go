// internal/handlers/user.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mkarlsen/broadside/internal/auth"
	"github.com/mkarlsen/broadside/internal/database"
	"github.com/mkarlsen/broadside/internal/models"
)

// UserStore is the account storage consumed by the user endpoints.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// CreateUserHandler registers a new account.
func CreateUserHandler(store UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" || req.Username == "" {
			http.Error(w, "email, username and password are required", http.StatusBadRequest)
			return
		}

		user := models.User{
			Email:    req.Email,
			Password: req.Password,
			Username: req.Username,
		}
		if err := store.CreateUser(r.Context(), &user); err != nil {
			if errors.Is(err, database.ErrEmailTaken) {
				http.Error(w, "email already exists", http.StatusConflict)
				return
			}
			log.Printf("failed to create user: %v", err)
			http.Error(w, "error creating user", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginHandler authenticates an account by email and password, then issues a
// JWT both in the response body and as an httponly auth_token cookie.
func LoginHandler(store UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request payload", http.StatusBadRequest)
			return
		}

		user, err := store.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			log.Printf("failed to authenticate user: %v", err)
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}
		match, err := auth.VerifyPassword(req.Password, user.Password)
		if err != nil || !match {
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}

		token, err := auth.NewToken(user.ID.String())
		if err != nil {
			log.Printf("failed to create token: %v", err)
			http.Error(w, "authentication failed", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "auth_token",
			Value:    token,
			HttpOnly: true,
			Path:     "/",
			MaxAge:   int(auth.TokenTTL.Seconds()),
		})
		writeJSON(w, http.StatusOK, loginResponse{Token: token})
	}
}
