package core

import "time"

// CompletionRequest is the ephemeral context window handed to a completion
// backend: instruction turns first, then the trimmed conversation ending with
// the new user message.
type CompletionRequest struct {
	Model       string
	Turns       []Turn
	Temperature float64
}

// CompletionResult carries the generated reply plus usage metadata. It is
// consumed once and not persisted beyond logging.
type CompletionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	Latency          time.Duration
}
