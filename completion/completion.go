// Package completion defines the client abstraction over conversational
// completion APIs and the retry policy applied around calls. Provider
// adapters live in the openai and anthropic subpackages; they perform the
// raw call and classify failures, while the policy (timeouts, bounded
// retries, backoff) is provider neutral and lives here.
package completion

import (
	"context"

	"github.com/chatrelay/chatrelay/core"
)

// Client generates a reply for a context window. Implementations must
// classify every failure as a *core.CompletionError and must not touch any
// shared conversation state.
type Client interface {
	Complete(ctx context.Context, req core.CompletionRequest) (core.CompletionResult, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req core.CompletionRequest) (core.CompletionResult, error)

// Complete calls the wrapped function.
func (f ClientFunc) Complete(ctx context.Context, req core.CompletionRequest) (core.CompletionResult, error) {
	return f(ctx, req)
}
