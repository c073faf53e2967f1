package session

import (
	"sync"
	"time"

	"github.com/chatrelay/chatrelay/core"
)

// channelSession owns one channel's ordered history. Each session carries
// its own lock so operations on one channel never block another.
type channelSession struct {
	mu         sync.Mutex
	turns      []core.Turn
	prompt     string
	lastActive time.Time
}

// Options configure the in-memory store.
type Options struct {
	// Budget caps the serialized size of a channel's history in bytes.
	// Zero means unlimited.
	Budget int
	// MaxTurns caps the number of retained turns per channel. Zero means
	// unlimited.
	MaxTurns int
	// DefaultPrompt is the instruction prompt for channels without an
	// override.
	DefaultPrompt string
}

// InMemoryStore is the process-local Store implementation: one mutable
// session map guarded by a read/write lock, with per-session locks for
// history mutation. Returned slices are defensive copies.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*channelSession
	opts     Options
}

// NewInMemoryStore constructs an empty store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{sessions: make(map[string]*channelSession), opts: opts}
}

// session returns the channel's session, creating it lazily.
func (s *InMemoryStore) session(channelID string) *channelSession {
	s.mu.RLock()
	cs, ok := s.sessions[channelID]
	s.mu.RUnlock()
	if ok {
		return cs
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cs, ok = s.sessions[channelID]; ok {
		return cs
	}
	cs = &channelSession{lastActive: time.Now()}
	s.sessions[channelID] = cs
	return cs
}

// Context implements Store.
func (s *InMemoryStore) Context(channelID string) []core.Turn {
	cs := s.session(channelID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]core.Turn, len(cs.turns))
	copy(out, cs.turns)
	return out
}

// Append implements Store. All turns land under one lock acquisition, so a
// concurrent reader sees either none or all of them.
func (s *InMemoryStore) Append(channelID string, turns ...core.Turn) {
	if len(turns) == 0 {
		return
	}
	cs := s.session(channelID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.turns = append(cs.turns, turns...)
	cs.trimLocked(s.opts.Budget, s.opts.MaxTurns)
	cs.lastActive = time.Now()
}

// trimLocked drops turns from the oldest end until both the turn-count cap
// and the size budget hold. The newest turn always survives.
func (cs *channelSession) trimLocked(budget, maxTurns int) {
	if maxTurns > 0 && len(cs.turns) > maxTurns {
		cs.turns = cs.turns[len(cs.turns)-maxTurns:]
	}
	if budget > 0 {
		cs.turns = core.TrimToBudget(cs.turns, budget)
	}
}

// Reset implements Store.
func (s *InMemoryStore) Reset(channelID string) {
	cs := s.session(channelID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.turns = nil
	cs.lastActive = time.Now()
}

// Len implements Store.
func (s *InMemoryStore) Len(channelID string) int {
	s.mu.RLock()
	cs, ok := s.sessions[channelID]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.turns)
}

// Stats implements Store.
func (s *InMemoryStore) Stats() Stats {
	s.mu.RLock()
	sessions := make([]*channelSession, 0, len(s.sessions))
	for _, cs := range s.sessions {
		sessions = append(sessions, cs)
	}
	s.mu.RUnlock()

	st := Stats{Channels: len(sessions)}
	for _, cs := range sessions {
		cs.mu.Lock()
		st.TotalTurns += len(cs.turns)
		cs.mu.Unlock()
	}
	return st
}

// SetPrompt implements Store.
func (s *InMemoryStore) SetPrompt(channelID, prompt string) {
	cs := s.session(channelID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.prompt = prompt
}

// Prompt implements Store.
func (s *InMemoryStore) Prompt(channelID string) string {
	s.mu.RLock()
	cs, ok := s.sessions[channelID]
	s.mu.RUnlock()
	if ok {
		cs.mu.Lock()
		prompt := cs.prompt
		cs.mu.Unlock()
		if prompt != "" {
			return prompt
		}
	}
	return s.opts.DefaultPrompt
}

// EvictIdle implements Store.
func (s *InMemoryStore) EvictIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, cs := range s.sessions {
		cs.mu.Lock()
		idle := cs.lastActive.Before(cutoff)
		cs.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}
