// internal/handlers/lobby.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mkarlsen/broadside/internal/lobby"
)

type lobbyCodeRequest struct {
	Code string `json:"code"`
}

type createLobbyResponse struct {
	Code string `json:"code"`
}

type startGameResponse struct {
	Message string `json:"message"`
}

// CreateLobbyHandler creates a waiting lobby hosted by the caller and returns
// its join code.
func CreateLobbyHandler(svc *lobby.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authedUser(w, r)
		if !ok {
			return
		}

		code, err := svc.CreateLobby(r.Context(), userID)
		if err != nil {
			writeLobbyError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, createLobbyResponse{Code: code})
	}
}

// JoinLobbyHandler seats the caller in the lobby named by the request body.
func JoinLobbyHandler(svc *lobby.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authedUser(w, r)
		if !ok {
			return
		}
		code, ok := decodeLobbyCode(w, r)
		if !ok {
			return
		}

		res, err := svc.JoinLobby(r.Context(), userID, code)
		if err != nil {
			writeLobbyError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// StartGameHandler transitions a ready lobby to in_progress.
func StartGameHandler(svc *lobby.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authedUser(w, r)
		if !ok {
			return
		}
		code, ok := decodeLobbyCode(w, r)
		if !ok {
			return
		}

		if err := svc.StartGame(r.Context(), userID, code); err != nil {
			writeLobbyError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, startGameResponse{Message: "game started"})
	}
}

// LobbyStatusHandler returns the lobby snapshot for a seated player. The code
// comes from the ?code= query parameter.
func LobbyStatusHandler(svc *lobby.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authedUser(w, r)
		if !ok {
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "lobby code is required", http.StatusBadRequest)
			return
		}
		if !lobby.ValidCode(code) {
			http.Error(w, "invalid lobby code", http.StatusBadRequest)
			return
		}

		res, err := svc.GetStatus(r.Context(), userID, code)
		if err != nil {
			writeLobbyError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// decodeLobbyCode parses and validates the code from a JSON body, writing the
// failure response itself when the code is unusable.
func decodeLobbyCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req lobbyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return "", false
	}
	if req.Code == "" {
		http.Error(w, "lobby code is required", http.StatusBadRequest)
		return "", false
	}
	if !lobby.ValidCode(req.Code) {
		http.Error(w, "invalid lobby code", http.StatusBadRequest)
		return "", false
	}
	return req.Code, true
}
