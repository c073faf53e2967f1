package testutil

import (
	"time"

	"github.com/chatrelay/chatrelay/core"
)

// MentionBuilder provides a fluent helper for constructing mention events in
// tests. Example:
//
//	ev := NewMentionBuilder().Channel("c1").Author("u1", "alice").Mentioning("bot1").Text("hello").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MentionBuilder struct {
	channelID  string
	guildID    string
	authorID   string
	authorName string
	bot        bool
	mentionID  string
	text       string
	timestamp  time.Time
}

// NewMentionBuilder creates a builder with defaults for channel and author.
func NewMentionBuilder() *MentionBuilder {
	return &MentionBuilder{channelID: "c1", authorID: "u1", authorName: "alice"}
}

// Channel sets the channel ID (chainable).
func (b *MentionBuilder) Channel(id string) *MentionBuilder { b.channelID = id; return b }

// Guild sets the guild ID (chainable).
func (b *MentionBuilder) Guild(id string) *MentionBuilder { b.guildID = id; return b }

// Author sets the author ID and display name (chainable).
func (b *MentionBuilder) Author(id, name string) *MentionBuilder {
	b.authorID = id
	b.authorName = name
	return b
}

// Bot marks the author as a bot account (chainable).
func (b *MentionBuilder) Bot() *MentionBuilder { b.bot = true; return b }

// Mentioning records a mention of the given user ID; Build prefixes the text
// with the corresponding mention token (chainable).
func (b *MentionBuilder) Mentioning(id string) *MentionBuilder { b.mentionID = id; return b }

// Text sets the message text, without any mention token (chainable).
func (b *MentionBuilder) Text(t string) *MentionBuilder { b.text = t; return b }

// At overrides the event timestamp (chainable). Use mainly in tests where
// determinism matters.
func (b *MentionBuilder) At(ts time.Time) *MentionBuilder { b.timestamp = ts; return b }

// Build constructs the core.MentionEvent value.
func (b *MentionBuilder) Build() core.MentionEvent {
	ev := core.MentionEvent{
		ChannelID:  b.channelID,
		GuildID:    b.guildID,
		AuthorID:   b.authorID,
		AuthorName: b.authorName,
		AuthorIsBot: b.bot,
		Text:       b.text,
		Timestamp:  b.timestamp,
	}
	if b.mentionID != "" {
		ev.Mentions = []string{b.mentionID}
		ev.Text = "<@" + b.mentionID + "> " + b.text
	}
	return ev
}
