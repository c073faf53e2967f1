// Package session holds per-channel conversation history. Sessions are
// created lazily on first use, trimmed to a configurable budget from the
// oldest end, and evicted only by the idle sweep. All state is in-memory and
// discarded on shutdown.
package session
