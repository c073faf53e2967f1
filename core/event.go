package core

import (
	"strings"
	"time"
)

// MentionEvent is an inbound gateway notification that a message referenced
// the bot. The gateway adapter fills it; the dispatch coordinator consumes it.
type MentionEvent struct {
	ChannelID   string    `json:"channel_id"`
	GuildID     string    `json:"guild_id,omitempty"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name,omitempty"`
	AuthorIsBot bool      `json:"author_is_bot,omitempty"`
	Text        string    `json:"text"`
	Mentions    []string  `json:"mentions,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// MentionsIdentity reports whether the event references the given bot
// identity, either through an explicit mention entity or a textual
// "@name" reference.
func (e MentionEvent) MentionsIdentity(botID, botName string) bool {
	for _, id := range e.Mentions {
		if id == botID {
			return true
		}
	}
	return botName != "" && strings.Contains(e.Text, "@"+botName)
}

// StripMention removes mention markup for the given identity from the event
// text: the entity form "<@id>" and the textual form "@name".
func (e MentionEvent) StripMention(botID, botName string) string {
	text := strings.ReplaceAll(e.Text, "<@"+botID+">", "")
	if botName != "" {
		text = strings.ReplaceAll(text, "@"+botName, "")
	}
	return strings.TrimSpace(text)
}

// OutboundMessage is an ordered chunk sequence bound for one channel. Chunk
// order preserves the original reply text order.
type OutboundMessage struct {
	ChannelID string   `json:"channel_id"`
	Chunks    []string `json:"chunks"`
}
