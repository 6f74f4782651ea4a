// internal/handlers/lobby_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/mkarlsen/broadside/internal/auth"
	"github.com/mkarlsen/broadside/internal/database"
	"github.com/mkarlsen/broadside/internal/lobby"
	"github.com/mkarlsen/broadside/internal/models"
)

func newTestEnv(t *testing.T) (*lobby.Service, *database.Memory) {
	t.Helper()
	if err := auth.Init(); err != nil {
		t.Fatalf("auth init failed: %v", err)
	}
	mem := database.NewMemory()
	return lobby.NewService(mem, mem, nil), mem
}

func registerUser(t *testing.T, mem *database.Memory, email, username string) (uuid.UUID, string) {
	t.Helper()
	u := models.User{Email: email, Username: username, Password: "password"}
	if err := mem.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	token, err := auth.NewToken(u.ID.String())
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}
	return u.ID, token
}

func doJSON(t *testing.T, h http.HandlerFunc, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set("Cookie", "auth_token="+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// TestLobbyFlow drives create -> join -> start -> status through the HTTP layer.
func TestLobbyFlow(t *testing.T) {
	svc, mem := newTestEnv(t)
	_, hostToken := registerUser(t, mem, "alice@example.com", "alice")
	joinerID, joinerToken := registerUser(t, mem, "bob@example.com", "bob")

	// create
	w := doJSON(t, CreateLobbyHandler(svc), "POST", "/lobby/create", hostToken, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 created, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if !lobby.ValidCode(created.Code) {
		t.Fatalf("invalid lobby code %q", created.Code)
	}

	// join
	body := `{"code":"` + created.Code + `"}`
	w = doJSON(t, JoinLobbyHandler(svc), "POST", "/lobby/join", joinerToken, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 ok, got %d: %s", w.Code, w.Body.String())
	}
	var joined lobby.JoinResult
	if err := json.Unmarshal(w.Body.Bytes(), &joined); err != nil {
		t.Fatalf("failed to decode join response: %v", err)
	}
	if joined.Host != "alice" {
		t.Fatalf("expected host alice, got %q", joined.Host)
	}

	// start
	w = doJSON(t, StartGameHandler(svc), "POST", "/lobby/start", hostToken, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 ok, got %d: %s", w.Code, w.Body.String())
	}

	// status
	w = doJSON(t, LobbyStatusHandler(svc), "GET", "/lobby/status?code="+created.Code, joinerToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 ok, got %d: %s", w.Code, w.Body.String())
	}
	var status lobby.StatusResult
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode status response: %v", err)
	}
	if status.Status != models.StatusInProgress {
		t.Fatalf("expected in_progress, got %q", status.Status)
	}
	if len(status.Players) != 2 || status.Players[1].ID != joinerID {
		t.Fatalf("unexpected players: %+v", status.Players)
	}
	if status.Opponent != "alice" {
		t.Fatalf("expected opponent alice, got %q", status.Opponent)
	}

	// second start must observe the game as already started
	w = doJSON(t, StartGameHandler(svc), "POST", "/lobby/start", joinerToken, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for repeated start, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLobbyAuthRequired(t *testing.T) {
	svc, _ := newTestEnv(t)

	w := doJSON(t, CreateLobbyHandler(svc), "POST", "/lobby/create", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without cookie, got %d", w.Code)
	}

	w = doJSON(t, JoinLobbyHandler(svc), "POST", "/lobby/join", "garbage-token", `{"code":"AB12CD"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for bad token, got %d", w.Code)
	}
}

func TestJoinLobbyValidation(t *testing.T) {
	svc, mem := newTestEnv(t)
	_, token := registerUser(t, mem, "bob@example.com", "bob")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing code", `{}`, http.StatusBadRequest},
		{"lowercase code", `{"code":"ab12cd"}`, http.StatusBadRequest},
		{"short code", `{"code":"AB12C"}`, http.StatusBadRequest},
		{"bad chars", `{"code":"AB12C!"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
		{"unknown lobby", `{"code":"ZZZZZZ"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, JoinLobbyHandler(svc), "POST", "/lobby/join", token, tt.body)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestLobbyStatusValidation(t *testing.T) {
	svc, mem := newTestEnv(t)
	hostID, hostToken := registerUser(t, mem, "alice@example.com", "alice")
	_, outsiderToken := registerUser(t, mem, "mallory@example.com", "mallory")

	if err := mem.Insert(context.Background(), &models.Lobby{
		Code: "AB12CD", Players: []uuid.UUID{hostID}, Status: models.StatusWaiting,
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	w := doJSON(t, LobbyStatusHandler(svc), "GET", "/lobby/status", hostToken, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing code, got %d", w.Code)
	}

	w = doJSON(t, LobbyStatusHandler(svc), "GET", "/lobby/status?code=ZZZZZZ", hostToken, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = doJSON(t, LobbyStatusHandler(svc), "GET", "/lobby/status?code=AB12CD", outsiderToken, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-member, got %d: %s", w.Code, w.Body.String())
	}
}

func TestStartGameForbidden(t *testing.T) {
	svc, mem := newTestEnv(t)
	hostID, _ := registerUser(t, mem, "alice@example.com", "alice")
	joinerID, _ := registerUser(t, mem, "bob@example.com", "bob")
	_, outsiderToken := registerUser(t, mem, "mallory@example.com", "mallory")

	if err := mem.Insert(context.Background(), &models.Lobby{
		Code: "AB12CD", Players: []uuid.UUID{hostID, joinerID}, Status: models.StatusReady,
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	w := doJSON(t, StartGameHandler(svc), "POST", "/lobby/start", outsiderToken, `{"code":"AB12CD"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}
