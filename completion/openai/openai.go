// Package openai adapts the OpenAI Chat Completions API to the relay's
// completion.Client interface. It maps conversation turns into the SDK's
// message format, classifies API failures into the relay's error taxonomy
// and reports token usage. Retry policy is owned by the completion package;
// the SDK's built-in retries are disabled.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/chatrelay/chatrelay/core"
)

// Options configure the OpenAI adapter.
type Options struct {
	APIKey  string
	BaseURL string
}

// Client wraps the official OpenAI client.
type Client struct {
	client openai.Client
}

// New creates an OpenAI-backed completion client.
func New(optFns ...func(o *Options)) *Client {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &Client{client: openai.NewClient(clientOpts...)}
}

// Complete performs one chat-completion call.
func (c *Client) Complete(ctx context.Context, req core.CompletionRequest) (core.CompletionResult, error) {
	params := openai.ChatCompletionNewParams{
		Messages:    buildMessages(req.Turns),
		Model:       openai.ChatModel(req.Model),
		Temperature: openai.Float(req.Temperature),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		return core.CompletionResult{}, classify(err)
	}
	if len(resp.Choices) == 0 {
		return core.CompletionResult{}, core.NewCompletionError(core.ErrMalformed, 0, errors.New("no choices returned"))
	}

	return core.CompletionResult{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		Latency:          latency,
	}, nil
}

// buildMessages converts turns into OpenAI chat messages. Developer turns
// map to system messages so instruction content leads the window.
func buildMessages(turns []core.Turn) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case core.RoleDeveloper:
			messages = append(messages, openai.SystemMessage(t.Content))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(t.Content))
		default:
			messages = append(messages, openai.UserMessage(t.Content))
		}
	}
	return messages
}

// classify maps SDK failures onto the relay error taxonomy.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewCompletionError(core.ErrTimeout, 0, err)
	}

	var apierr *openai.Error
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

	return core.NewCompletionError(core.ErrUpstream, 0, fmt.Errorf("openai transport: %w", err))
}
