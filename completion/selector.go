package completion

import "sync"

// ModelSelector holds the model identifier used for requests. The admin
// <model> command swaps it at runtime while exchanges are in flight, so reads
// and writes are synchronized.
type ModelSelector struct {
	mu    sync.RWMutex
	model string
}

// NewModelSelector creates a selector seeded with the configured model.
func NewModelSelector(model string) *ModelSelector {
	return &ModelSelector{model: model}
}

// Current returns the model in effect.
func (s *ModelSelector) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Swap installs a new model and returns the previous one.
func (s *ModelSelector) Swap(model string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.model
	s.model = model
	return old
}
