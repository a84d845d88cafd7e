package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhosale/smartfarm-api/internal/domain"
)

func appendTurns(t *testing.T, store *ChatStore, sessionID domain.SessionID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleModel
		}
		err := store.AppendTurn(&domain.ChatTurn{
			ID:        domain.TurnID(fmt.Sprintf("turn-%d", i)),
			SessionID: sessionID,
			Role:      role,
			Text:      fmt.Sprintf("text %d", i),
		})
		require.NoError(t, err)
	}
}

func TestChatStoreKeepsSubmissionOrder(t *testing.T) {
	store := NewChatStore()
	appendTurns(t, store, "s1", 6)

	turns, err := store.TurnsBySession("s1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 6)
	for i, turn := range turns {
		assert.Equal(t, fmt.Sprintf("text %d", i), turn.Text)
	}
}

func TestChatStoreLimitReturnsMostRecent(t *testing.T) {
	store := NewChatStore()
	appendTurns(t, store, "s1", 10)

	turns, err := store.TurnsBySession("s1", 4)
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, "text 6", turns[0].Text)
	assert.Equal(t, "text 9", turns[3].Text)
}

func TestChatStoreSessionsAreIsolated(t *testing.T) {
	store := NewChatStore()
	appendTurns(t, store, "s1", 3)

	turns, err := store.TurnsBySession("s2", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
}
