// Package gateway defines the boundary to the chat-gateway connection. The
// core consumes a stream of mention events and hands ordered chunk sequences
// back; connection bootstrap and authentication live entirely in adapters
// (see the ws subpackage).
package gateway

import (
	"context"

	"github.com/chatrelay/chatrelay/core"
)

// Source delivers inbound mention events. The channel closes when the
// connection ends.
type Source interface {
	Events() <-chan core.MentionEvent
	Close() error
}

// Sender delivers outbound traffic for a channel. Send delivers chunks in
// order; Typing is a best-effort activity hint; DirectMessage reaches a user
// outside any channel (startup notifications to the developer).
type Sender interface {
	Send(ctx context.Context, channelID string, chunks []string) error
	Typing(ctx context.Context, channelID string) error
	DirectMessage(ctx context.Context, userID, text string) error
}
