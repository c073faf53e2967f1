package dispatch

import "sync"

// channelLocks serializes processing per channel without any cross-channel
// contention beyond the brief map access. Locks are created lazily and kept
// for the process lifetime; the per-channel footprint is one mutex.
type channelLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newChannelLocks() *channelLocks {
	return &channelLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire blocks until the channel's lock is held and returns the release
// function. The release function is idempotent-unsafe; callers must invoke
// it exactly once (the coordinator guards this with a release flag).
func (l *channelLocks) Acquire(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
