package store

import (
	"sync"

	"github.com/perzonai/persona-engine/internal/models"
)

// ConversationStore keeps an ordered, append-only chat log per persona,
// capped at maxTurns so logs do not grow without bound.
type ConversationStore struct {
	mu       sync.Mutex
	logs     map[string][]models.ConversationTurn
	maxTurns int
}

func NewConversationStore(maxTurns int) *ConversationStore {
	if maxTurns <= 0 {
		maxTurns = 100
	}
	return &ConversationStore{
		logs:     make(map[string][]models.ConversationTurn),
		maxTurns: maxTurns,
	}
}

// Append adds turns to the persona's log, dropping the oldest entries
// once the cap is exceeded.
func (s *ConversationStore) Append(personaID string, turns ...models.ConversationTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := append(s.logs[personaID], turns...)
	if len(log) > s.maxTurns {
		log = log[len(log)-s.maxTurns:]
	}
	s.logs[personaID] = log
}

// Get returns the persona's log in order, empty if none.
func (s *ConversationStore) Get(personaID string) []models.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ConversationTurn(nil), s.logs[personaID]...)
}

// Delete drops the persona's log. Called when the persona itself is
// deleted.
func (s *ConversationStore) Delete(personaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, personaID)
}
