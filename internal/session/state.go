package session

import (
	"sync"

	"pagetalk/internal/vector"
)

// State owns the single live index. Ingestion replaces it wholesale; the
// previous index is discarded, never merged. A RWMutex guards replacement
// against concurrent readers so a question either sees the old index or the
// new one, never a mix.
type State struct {
	mu    sync.RWMutex
	index *vector.Index
}

func NewState() *State {
	return &State{}
}

// Replace swaps in a fully built index.
func (s *State) Replace(idx *vector.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = idx
}

// Current returns the live index, or false if nothing has been ingested yet.
func (s *State) Current() (*vector.Index, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return nil, false
	}
	return s.index, true
}
