package completion

import (
	"context"
	"errors"
	"time"

	"github.com/chatrelay/chatrelay/core"
)

// RetryOptions configure the retry wrapper.
type RetryOptions struct {
	// Timeout bounds each individual attempt. Zero disables the per-attempt
	// deadline (the caller's context still applies).
	Timeout time.Duration
	// MaxRateLimitRetries bounds additional attempts after a rate-limited
	// failure.
	MaxRateLimitRetries int
	// BaseDelay seeds the exponential backoff schedule.
	BaseDelay time.Duration
	// MaxDelay caps the backoff schedule.
	MaxDelay time.Duration
	// Sleep is swappable for tests; defaults to a context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps a client with the relay's call policy:
//   - each attempt runs under Timeout; a deadline hit surfaces as
//     core.ErrTimeout with no retry
//   - rate-limited failures are retried up to MaxRateLimitRetries times with
//     exponential backoff and jitter, then surfaced
//   - other upstream failures are retried exactly once
//   - unauthorized and malformed failures are never retried
func WithRetry(client Client, optFns ...func(o *RetryOptions)) Client {
	opts := RetryOptions{
		Timeout:             90 * time.Second,
		MaxRateLimitRetries: 3,
		BaseDelay:           time.Second,
		MaxDelay:            time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepCtx
	}
	return &retryClient{client: client, opts: opts}
}

type retryClient struct {
	client Client
	opts   RetryOptions
}

func (r *retryClient) Complete(ctx context.Context, req core.CompletionRequest) (core.CompletionResult, error) {
	var lastErr error
	rateLimitRetries := 0
	upstreamRetried := false

	for attempt := 0; ; attempt++ {
		res, err := r.attempt(ctx, req)
		if err == nil {
			return res, nil
		}
		lastErr = err

		switch core.KindOf(err) {
		case core.ErrRateLimited:
			if rateLimitRetries >= r.opts.MaxRateLimitRetries {
				return core.CompletionResult{}, lastErr
			}
			rateLimitRetries++
			if serr := r.opts.Sleep(ctx, backoffDelay(rateLimitRetries, r.opts.BaseDelay, r.opts.MaxDelay)); serr != nil {
				return core.CompletionResult{}, lastErr
			}
		case core.ErrUpstream:
			if upstreamRetried {
				return core.CompletionResult{}, lastErr
			}
			upstreamRetried = true
			if serr := r.opts.Sleep(ctx, r.opts.BaseDelay); serr != nil {
				return core.CompletionResult{}, lastErr
			}
		default:
			// Timeout, unauthorized, malformed: the caller decides.
			return core.CompletionResult{}, lastErr
		}
	}
}

func (r *retryClient) attempt(ctx context.Context, req core.CompletionRequest) (core.CompletionResult, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}
	res, err := r.client.Complete(ctx, req)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && core.KindOf(err) != core.ErrTimeout {
		err = core.NewCompletionError(core.ErrTimeout, 0, err)
	}
	return res, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
