// internal/lobby/code_test.go
package lobby

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/broadside/internal/models"
)

// existsFuncStore stubs the store's existence check for generator tests.
type existsFuncStore struct {
	Store
	exists func(code string) bool
}

func (s *existsFuncStore) Exists(_ context.Context, code string) (bool, error) {
	return s.exists(code), nil
}

func TestGenerateCode_Format(t *testing.T) {
	store := &existsFuncStore{exists: func(string) bool { return false }}

	for i := 0; i < 200; i++ {
		code, err := GenerateCode(context.Background(), store)
		require.NoError(t, err)
		require.Len(t, code, CodeLength)
		assert.True(t, ValidCode(code), "generated code %q must be valid", code)
	}
}

func TestGenerateCode_RetriesOnCollision(t *testing.T) {
	var first string
	calls := 0
	store := &existsFuncStore{exists: func(code string) bool {
		calls++
		if calls == 1 {
			first = code
			return true // force one collision
		}
		return false
	}}

	code, err := GenerateCode(context.Background(), store)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 2)
	assert.NotEqual(t, first, code)
}

func TestValidCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"AB12CD", true},
		{"ZZZZZZ", true},
		{"000000", true},
		{"ab12cd", false}, // lowercase
		{"AB12C", false},  // too short
		{"AB12CDE", false},
		{"AB 2CD", false},
		{"AB-2CD", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidCode(tt.code), "code %q", tt.code)
	}
}

func TestRejectJoin_Preconditions(t *testing.T) {
	host := uuid.New()
	joiner := uuid.New()

	waiting := &models.Lobby{Code: "AAAAAA", Players: []uuid.UUID{host}, Status: models.StatusWaiting}
	require.Nil(t, rejectJoin(waiting, joiner))

	assert.Equal(t, KindInvalidState, rejectJoin(waiting, host).Kind, "host cannot join own lobby")

	ready := &models.Lobby{Code: "AAAAAA", Players: []uuid.UUID{host, joiner}, Status: models.StatusReady}
	assert.Equal(t, KindInvalidState, rejectJoin(ready, uuid.New()).Kind)

	// Full check fires even if status and seat count disagree.
	corrupt := &models.Lobby{Code: "AAAAAA", Players: []uuid.UUID{host, joiner}, Status: models.StatusWaiting}
	assert.Equal(t, KindFull, rejectJoin(corrupt, uuid.New()).Kind)
}
