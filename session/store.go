package session

import (
	"time"

	"github.com/chatrelay/chatrelay/core"
)

// Stats summarizes store contents for the diagnostic status command.
type Stats struct {
	Channels   int `json:"channels"`
	TotalTurns int `json:"total_turns"`
}

// Store is the conversation store contract consumed by the dispatch
// coordinator and the admin handler. Implementations must be safe for
// concurrent use across channels and guarantee read-your-writes within a
// channel: a Context call after an Append observes that append.
type Store interface {
	// Context returns the current trimmed history for a channel, oldest
	// first, creating an empty session if absent.
	Context(channelID string) []core.Turn
	// Append adds turns to a channel's history in one atomic step, then
	// trims from the oldest end until the total serialized size fits the
	// budget. The newest appended turn is never trimmed.
	Append(channelID string, turns ...core.Turn)
	// Reset clears a channel's history.
	Reset(channelID string)
	// Len reports the number of turns held for a channel.
	Len(channelID string) int
	// Stats reports aggregate counts across all channels.
	Stats() Stats
	// SetPrompt overrides the channel's instruction prompt; an empty value
	// restores the default.
	SetPrompt(channelID, prompt string)
	// Prompt returns the instruction prompt in effect for a channel.
	Prompt(channelID string) string
	// EvictIdle drops sessions with no activity for at least maxIdle and
	// returns how many were removed.
	EvictIdle(maxIdle time.Duration) int
}
