// Package admin recognizes the privileged commands embedded in mention text
// and executes them against the session store and model selector. The
// command vocabulary is a closed set of tagged variants parsed by explicit
// prefix rules. Unmatched text, or a matched command from anyone but the
// configured developer, is not handled here and flows on to normal
// conversation handling.
package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/chatrelay/chatrelay/completion"
	"github.com/chatrelay/chatrelay/core"
	"github.com/chatrelay/chatrelay/gateway"
	"github.com/chatrelay/chatrelay/logging"
	"github.com/chatrelay/chatrelay/session"
)

// CommandKind tags the recognized command variants.
type CommandKind int

const (
	// CmdForget clears the channel's conversation history.
	CmdForget CommandKind = iota
	// CmdStatus dumps store and model diagnostics into the channel.
	CmdStatus
	// CmdModel switches the completion model at runtime.
	CmdModel
	// CmdDev injects a developer turn into the channel history.
	CmdDev
)

// Command is one parsed admin command.
type Command struct {
	Kind CommandKind
	Arg  string
}

// Parse extracts an admin command from mention text. The second return is
// false when the text is ordinary conversation.
func Parse(text string) (Command, bool) {
	text = strings.TrimSpace(text)

	switch {
	case text == "<forget>":
		return Command{Kind: CmdForget}, true
	case text == "<status>":
		return Command{Kind: CmdStatus}, true
	case strings.HasPrefix(text, "<model>"):
		return Command{Kind: CmdModel, Arg: strings.TrimSpace(strings.TrimPrefix(text, "<model>"))}, true
	case strings.HasPrefix(text, "<dev>"):
		return Command{Kind: CmdDev, Arg: strings.TrimSpace(strings.TrimPrefix(text, "<dev>"))}, true
	}
	return Command{}, false
}

// Handler executes admin commands. It never calls the completion client.
type Handler struct {
	devUserID string
	store     session.Store
	models    *completion.ModelSelector
	sender    gateway.Sender
	logger    logging.Logger
}

// Options configure the handler.
type Options struct {
	Logger logging.Logger
}

// NewHandler builds an admin handler gated on the given developer identity.
func NewHandler(devUserID string, store session.Store, models *completion.ModelSelector, sender gateway.Sender, optFns ...func(o *Options)) *Handler {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Handler{devUserID: devUserID, store: store, models: models, sender: sender, logger: opts.Logger}
}

// Handle runs the admin command embedded in text, if any. It returns true
// when the event was consumed. Commands from non-developer identities are
// not consumed: they fall through to conversation handling.
func (h *Handler) Handle(ctx context.Context, ev core.MentionEvent, text string) bool {
	cmd, ok := Parse(text)
	if !ok {
		return false
	}
	if ev.AuthorID != h.devUserID {
		h.logger.Debug("admin command from non-developer ignored", "author_id", ev.AuthorID)
		return false
	}

	switch cmd.Kind {
	case CmdForget:
		h.store.Reset(ev.ChannelID)
		h.reply(ctx, ev.ChannelID, "Conversation history has been cleared.")
	case CmdStatus:
		h.reply(ctx, ev.ChannelID, h.statusReport(ev.ChannelID))
	case CmdModel:
		if cmd.Arg == "" {
			h.reply(ctx, ev.ChannelID, "Please specify a model name.")
			break
		}
		old := h.models.Swap(cmd.Arg)
		h.logger.Info("model changed", "old", old, "new", cmd.Arg)
		h.reply(ctx, ev.ChannelID, fmt.Sprintf("Model changed from %s to %s", old, cmd.Arg))
	case CmdDev:
		if cmd.Arg == "" {
			h.reply(ctx, ev.ChannelID, "Please specify a developer message.")
			break
		}
		h.store.Append(ev.ChannelID, core.NewDeveloperTurn(cmd.Arg))
		h.reply(ctx, ev.ChannelID, "Developer message added to conversation history.")
	}
	return true
}

func (h *Handler) statusReport(channelID string) string {
	st := h.store.Stats()
	return fmt.Sprintf(
		"**Bot Status**\n- Current model: `%s`\n- This channel history: %d turns\n- Total history: %d turns across %d channels",
		h.models.Current(), h.store.Len(channelID), st.TotalTurns, st.Channels,
	)
}

func (h *Handler) reply(ctx context.Context, channelID, text string) {
	if err := h.sender.Send(ctx, channelID, []string{text}); err != nil {
		h.logger.Error("failed to send admin reply", "channel_id", channelID, "error", err)
	}
}
