// Package dispatch orchestrates one inbound mention event end to end:
// validate the mention, serialize access to the channel's session, call the
// completion client, commit the exchanged turns, and hand the segmented
// reply to the outbound sender. Failures never mutate history and always
// release the channel's exclusivity.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/chatrelay/chatrelay/completion"
	"github.com/chatrelay/chatrelay/core"
	"github.com/chatrelay/chatrelay/gateway"
	"github.com/chatrelay/chatrelay/logging"
	"github.com/chatrelay/chatrelay/segment"
	"github.com/chatrelay/chatrelay/session"
)

// AdminHandler consumes privileged commands embedded in mention text.
// Returns true when the event was fully handled.
type AdminHandler interface {
	Handle(ctx context.Context, ev core.MentionEvent, text string) bool
}

// exchangeLogger is the optional structured record emitted per exchange.
// The production RelayLogger implements it; plain loggers fall back to a
// key-value Info record.
type exchangeLogger interface {
	LogExchange(exchangeID, model string, promptTokens, completionTokens int, latency time.Duration, err error)
}

// Options configure the coordinator.
type Options struct {
	// BotID and BotName identify the bot for mention detection and
	// self-mention suppression.
	BotID   string
	BotName string
	// MaxChunkSize caps outbound chunk length in bytes.
	MaxChunkSize int
	// RequestBudget caps the serialized size of one context window.
	// Zero disables the cap (the store budget still applies).
	RequestBudget int
	// Temperature is passed through to the completion backend.
	Temperature float64
	// Admin optionally intercepts privileged commands.
	Admin AdminHandler
	// Logger receives per-event and per-exchange records.
	Logger logging.Logger
}

// Coordinator is the dispatch core. Safe for concurrent use; events for
// distinct channels proceed in parallel, events for the same channel are
// serialized from context read through history commit.
type Coordinator struct {
	store  session.Store
	client completion.Client
	models *completion.ModelSelector
	sender gateway.Sender
	locks  *channelLocks
	opts   Options
}

// New constructs a Coordinator.
func New(store session.Store, client completion.Client, models *completion.ModelSelector, sender gateway.Sender, optFns ...func(o *Options)) *Coordinator {
	opts := Options{
		MaxChunkSize: 2000,
		Temperature:  0.7,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Coordinator{
		store:  store,
		client: client,
		models: models,
		sender: sender,
		locks:  newChannelLocks(),
		opts:   opts,
	}
}

// HandleEvent processes one inbound event. Events that are not genuine
// mentions, or that originate from bot identities, are dropped silently.
// The returned error reports upstream failures already converted into a
// user-visible notification; callers only log it.
func (c *Coordinator) HandleEvent(ctx context.Context, ev core.MentionEvent) error {
	// Received: cycle prevention and mention validation.
	if ev.AuthorIsBot || ev.AuthorID == c.opts.BotID {
		return nil
	}
	if !ev.MentionsIdentity(c.opts.BotID, c.opts.BotName) {
		return nil
	}
	text := ev.StripMention(c.opts.BotID, c.opts.BotName)
	if text == "" {
		return nil
	}

	if c.opts.Admin != nil && c.opts.Admin.Handle(ctx, ev, text) {
		return nil
	}

	if err := c.sender.Typing(ctx, ev.ChannelID); err != nil {
		c.opts.Logger.Debug("typing hint failed", "channel_id", ev.ChannelID, "error", err)
	}

	// Resolving: exclusive processing rights for this channel's session,
	// held through the history commit. Released exactly once; the deferred
	// call covers every failure path.
	unlock := c.locks.Acquire(ev.ChannelID)
	released := false
	release := func() {
		if !released {
			released = true
			unlock()
		}
	}
	defer release()

	userTurn := core.NewUserTurn(ev.AuthorName, text)
	req := c.buildRequest(ev.ChannelID, userTurn)

	// Calling: the only blocking operation in the pipeline.
	exchangeID := core.NewID()
	result, err := c.client.Complete(ctx, req)
	c.logExchange(ev, exchangeID, req.Model, result, err)
	if err != nil {
		// Failed calls must not pollute history.
		release()
		c.sendApology(ctx, ev.ChannelID, err)
		return fmt.Errorf("exchange %s: %w", exchangeID, err)
	}

	// Updating: both turns land atomically.
	c.store.Append(ev.ChannelID, userTurn, core.NewAssistantTurn(result.Text))
	release()

	// Replying: partial-send failures are logged, never rolled back.
	chunks := segment.Split(result.Text, c.opts.MaxChunkSize)
	if err := c.sender.Send(ctx, ev.ChannelID, chunks); err != nil {
		c.opts.Logger.Error("outbound delivery failed",
			"channel_id", ev.ChannelID, "exchange_id", exchangeID, "chunks", len(chunks), "error", err)
	}
	return nil
}

// buildRequest assembles the context window: instruction prompt first, then
// the stored history plus the new user turn trimmed to the request budget.
func (c *Coordinator) buildRequest(channelID string, userTurn core.Turn) core.CompletionRequest {
	history := append(c.store.Context(channelID), userTurn)
	history = core.TrimToBudget(history, c.opts.RequestBudget)

	turns := make([]core.Turn, 0, len(history)+1)
	if prompt := c.store.Prompt(channelID); prompt != "" {
		turns = append(turns, core.NewDeveloperTurn(prompt))
	}
	turns = append(turns, history...)

	return core.CompletionRequest{
		Model:       c.models.Current(),
		Turns:       turns,
		Temperature: c.opts.Temperature,
	}
}

func (c *Coordinator) sendApology(ctx context.Context, channelID string, cause error) {
	msg := fmt.Sprintf("Sorry, I couldn't get a response right now (%s). Please try again later.", core.KindOf(cause))
	if err := c.sender.Send(ctx, channelID, []string{msg}); err != nil {
		c.opts.Logger.Error("failed to send error notification", "channel_id", channelID, "error", err)
	}
}

func (c *Coordinator) logExchange(ev core.MentionEvent, exchangeID, model string, result core.CompletionResult, err error) {
	if xl, ok := c.opts.Logger.(exchangeLogger); ok {
		xl.LogExchange(exchangeID, model, result.PromptTokens, result.CompletionTokens, result.Latency, err)
		return
	}
	if err != nil {
		c.opts.Logger.Error("exchange failed",
			"exchange_id", exchangeID, "channel_id", ev.ChannelID, "guild_id", ev.GuildID,
			"model", model, "error", err)
		return
	}
	c.opts.Logger.Info("exchange completed",
		"exchange_id", exchangeID, "channel_id", ev.ChannelID, "guild_id", ev.GuildID,
		"model", model, "prompt_tokens", result.PromptTokens,
		"completion_tokens", result.CompletionTokens, "latency", result.Latency)
}
