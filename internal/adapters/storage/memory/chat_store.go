package memory

import (
	"sync"

	"github.com/nikhilbhosale/smartfarm-api/internal/domain"
)

// ChatStore keeps each session's transcript in memory. Turns are
// append-only and stay in submission order for the life of the process.
type ChatStore struct {
	mu    sync.RWMutex
	turns map[domain.SessionID][]*domain.ChatTurn
}

func NewChatStore() *ChatStore {
	return &ChatStore{
		turns: make(map[domain.SessionID][]*domain.ChatTurn),
	}
}

func (s *ChatStore) AppendTurn(turn *domain.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns[turn.SessionID] = append(s.turns[turn.SessionID], turn)
	return nil
}

func (s *ChatStore) TurnsBySession(sessionID domain.SessionID, limit int) ([]*domain.ChatTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[sessionID]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	out := make([]*domain.ChatTurn, len(turns))
	copy(out, turns)
	return out, nil
}
