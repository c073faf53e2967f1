package core

import (
	"fmt"
	"time"
)

// Role identifies the speaker of a conversation turn.
type Role string

const (
	// RoleUser marks a turn authored by a chat user.
	RoleUser Role = "user"
	// RoleAssistant marks a turn generated by the completion API.
	RoleAssistant Role = "assistant"
	// RoleDeveloper marks instruction turns (system prompt, injected
	// developer messages). Sent ahead of the conversation on each request.
	RoleDeveloper Role = "developer"
)

// Turn is one message in a channel's conversation. Turns are immutable after
// creation; the session store appends them and never rewrites them.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserTurn builds a user turn. The author name is folded into the content
// as "(name) text" so the model can tell speakers apart in shared channels.
func NewUserTurn(authorName, text string) Turn {
	content := text
	if authorName != "" {
		content = fmt.Sprintf("(%s) %s", authorName, text)
	}
	return Turn{Role: RoleUser, Content: content, Timestamp: time.Now().UTC()}
}

// NewAssistantTurn builds an assistant turn from a completion reply.
func NewAssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Content: text, Timestamp: time.Now().UTC()}
}

// NewDeveloperTurn builds a developer instruction turn.
func NewDeveloperTurn(text string) Turn {
	return Turn{Role: RoleDeveloper, Content: text, Timestamp: time.Now().UTC()}
}

// Size returns the turn's serialized size in bytes as counted against the
// session budget: role tag plus content.
func (t Turn) Size() int {
	return len(t.Role) + len(t.Content)
}

// String renders the turn for log records.
func (t Turn) String() string {
	return fmt.Sprintf("<%s> %s", t.Role, t.Content)
}

// TurnsSize sums Size over a slice of turns.
func TurnsSize(turns []Turn) int {
	total := 0
	for _, t := range turns {
		total += t.Size()
	}
	return total
}

// TrimToBudget drops turns from the oldest end until the total serialized
// size fits the budget. The newest turn is always retained even if it alone
// exceeds the budget. A budget <= 0 means unlimited. The input slice is not
// mutated; the result aliases its tail.
func TrimToBudget(turns []Turn, budget int) []Turn {
	if budget <= 0 || len(turns) == 0 {
		return turns
	}
	total := TurnsSize(turns)
	start := 0
	for total > budget && start < len(turns)-1 {
		total -= turns[start].Size()
		start++
	}
	return turns[start:]
}
