package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const stateTTL = 10 * time.Minute

// stateStore remembers issued OAuth state values until they are used or expire.
type stateStore struct {
	mu     sync.Mutex
	issued map[string]time.Time
	now    func() time.Time
}

func newStateStore() *stateStore {
	return &stateStore{
		issued: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Issue returns a new random state.
func (s *stateStore) Issue() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for state, at := range s.issued {
		if now.Sub(at) > stateTTL {
			delete(s.issued, state)
		}
	}

	state := uuid.NewString()
	s.issued[state] = now
	return state
}

// Consume reports whether state was issued and is still fresh. A state can be
// consumed once.
func (s *stateStore) Consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, ok := s.issued[state]
	if !ok {
		return false
	}
	delete(s.issued, state)
	return s.now().Sub(at) <= stateTTL
}
