// Package anthropic adapts the Anthropic Messages API to the relay's
// completion.Client interface. Developer turns become system blocks since
// the Messages API carries instructions out of band.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/chatrelay/chatrelay/core"
)

// Options configure the Anthropic adapter.
type Options struct {
	APIKey    string
	MaxTokens int64
}

// Client wraps the official Anthropic client.
type Client struct {
	client    anthropic.Client
	maxTokens int64
}

// New creates an Anthropic-backed completion client.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{MaxTokens: 4096}
	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	return &Client{client: anthropic.NewClient(clientOpts...), maxTokens: opts.MaxTokens}
}

// Complete performs one messages call.
func (c *Client) Complete(ctx context.Context, req core.CompletionRequest) (core.CompletionResult, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   c.maxTokens,
		Messages:    buildMessages(req.Turns),
		Temperature: anthropic.Float(req.Temperature),
	}
	if system := systemBlocks(req.Turns); len(system) > 0 {
		params.System = system
	}

	start := time.Now()
	resp, err := c.client.Messages.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		return core.CompletionResult{}, classify(err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}
	if text.Len() == 0 {
		return core.CompletionResult{}, core.NewCompletionError(core.ErrMalformed, 0, errors.New("no text content returned"))
	}

	return core.CompletionResult{
		Text:             text.String(),
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
		Latency:          latency,
	}, nil
}

// buildMessages converts conversational turns, skipping developer turns
// (handled by systemBlocks). The Messages API rejects empty content, so
// blank turns are dropped.
func buildMessages(turns []core.Turn) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		if t.Role == core.RoleDeveloper || t.Content == "" {
			continue
		}
		if t.Role == core.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
	}
	return messages
}

func systemBlocks(turns []core.Turn) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, t := range turns {
		if t.Role == core.RoleDeveloper && t.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: t.Content})
		}
	}
	return blocks
}

// classify maps SDK failures onto the relay error taxonomy.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewCompletionError(core.ErrTimeout, 0, err)
	}

	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch code := apierr.StatusCode; {
		case code == 401 || code == 403:
			return core.NewCompletionError(core.ErrUnauthorized, code, err)
		case code == 429:
			return core.NewCompletionError(core.ErrRateLimited, code, err)
		case code == 400 || code == 404 || code == 422:
			return core.NewCompletionError(core.ErrMalformed, code, err)
		default:
			return core.NewCompletionError(core.ErrUpstream, code, err)
		}
	}

	return core.NewCompletionError(core.ErrUpstream, 0, fmt.Errorf("anthropic transport: %w", err))
}
