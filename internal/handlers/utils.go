// internal/handlers/utils.go
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mkarlsen/broadside/internal/auth"
	"github.com/mkarlsen/broadside/internal/lobby"
)

// extractCookieToken extracts a named cookie value from the Cookie header, or
// returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// authedUser authenticates the request from its auth_token cookie and returns
// the caller's user ID. On failure it writes the response itself and returns
// false.
func authedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	cookie := r.Header.Get("Cookie")
	if !strings.Contains(cookie, "auth_token=") {
		http.Error(w, "missing auth_token", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	token := extractCookieToken(cookie, "auth_token")

	userIDStr, err := auth.VerifyToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusForbidden)
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		http.Error(w, "invalid user id format in token", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// writeLobbyError maps a service failure onto the HTTP surface. Only the typed
// error's kind and message reach the client; wrapped store detail stays in logs.
func writeLobbyError(w http.ResponseWriter, err error) {
	var domainErr *lobby.Error
	if !errors.As(err, &domainErr) {
		log.Printf("unexpected lobby service error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var status int
	switch domainErr.Kind {
	case lobby.KindNotFound:
		status = http.StatusNotFound
	case lobby.KindForbidden:
		status = http.StatusForbidden
	case lobby.KindInvalidState, lobby.KindFull:
		status = http.StatusBadRequest
	default:
		log.Printf("lobby store error: %v", domainErr)
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, domainErr)
}
