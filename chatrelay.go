// Package chatrelay provides the top-level façade wiring the relay together:
// configuration, session store, completion client with retry policy, admin
// handler, dispatch coordinator, gateway connection and the diagnostics
// server. Most applications interact with this package by:
//  1. Loading a config.Config
//  2. Creating a Relay via New()
//  3. Calling Run() with a signal-aware context
package chatrelay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chatrelay/chatrelay/admin"
	"github.com/chatrelay/chatrelay/completion"
	"github.com/chatrelay/chatrelay/completion/anthropic"
	"github.com/chatrelay/chatrelay/completion/openai"
	"github.com/chatrelay/chatrelay/config"
	"github.com/chatrelay/chatrelay/dispatch"
	"github.com/chatrelay/chatrelay/gateway"
	"github.com/chatrelay/chatrelay/gateway/ws"
	"github.com/chatrelay/chatrelay/internal/util"
	"github.com/chatrelay/chatrelay/logging"
	"github.com/chatrelay/chatrelay/session"
	"github.com/chatrelay/chatrelay/web"
)

// evictionSweepInterval paces the idle-session sweep when an idle TTL is
// configured.
const evictionSweepInterval = 10 * time.Minute

// Options configure the Relay beyond what config carries.
type Options struct {
	// Logger defaults to a JSON slog logger at info level.
	Logger *logging.RelayLogger
	// Client overrides the completion backend (tests).
	Client completion.Client
}

// Relay aggregates the relay's components behind one lifecycle.
type Relay struct {
	cfg    *config.Config
	logger *logging.RelayLogger

	store       *session.InMemoryStore
	models      *completion.ModelSelector
	client      completion.Client
	coordinator *dispatch.Coordinator
}

// New wires the relay from configuration.
func New(cfg *config.Config, optFns ...func(o *Options)) (*Relay, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.New(nil)
	}

	prompt, err := util.RenderPrompt(cfg.Bot.SystemPrompt, map[string]any{
		"BotName": cfg.Bot.Name,
		"Model":   cfg.Completion.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}

	store := session.NewInMemoryStore(func(o *session.Options) {
		o.Budget = cfg.Session.Budget
		o.MaxTurns = cfg.Session.MaxTurns
		o.DefaultPrompt = prompt
	})
	models := completion.NewModelSelector(cfg.Completion.Model)

	client := opts.Client
	if client == nil {
		backend, err := newBackend(cfg.Completion)
		if err != nil {
			return nil, err
		}
		client = completion.WithRetry(backend, func(o *completion.RetryOptions) {
			o.Timeout = cfg.Completion.Timeout
			o.MaxRateLimitRetries = cfg.Completion.MaxRateLimitRetries
		})
	}

	return &Relay{
		cfg:    cfg,
		logger: opts.Logger,
		store:  store,
		models: models,
		client: client,
	}, nil
}

func newBackend(cfg config.CompletionConfig) (completion.Client, error) {
	switch cfg.Provider {
	case "openai", "":
		return openai.New(func(o *openai.Options) { o.APIKey = cfg.APIKey }), nil
	case "anthropic":
		return anthropic.New(func(o *anthropic.Options) { o.APIKey = cfg.APIKey }), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}

// Run connects to the gateway and processes events until ctx is canceled or
// the connection drops. In-flight events are allowed to finish on shutdown.
func (r *Relay) Run(ctx context.Context) error {
	gw, err := ws.Dial(ctx, r.cfg.Gateway.URL, func(o *ws.Options) {
		o.Token = r.cfg.Gateway.Token
		o.Logger = r.logger.WithComponent("gateway")
	})
	if err != nil {
		return fmt.Errorf("connect gateway: %w", err)
	}
	defer gw.Close()

	r.buildCoordinator(gw)

	r.notifyStartup(ctx, gw)

	group, ctx := errgroup.WithContext(ctx)

	if r.cfg.Web.Addr != "" {
		group.Go(func() error { return r.serveDiagnostics(ctx) })
	}
	if r.cfg.Session.IdleTTL > 0 {
		group.Go(func() error {
			r.evictionLoop(ctx)
			return nil
		})
	}

	events := errgroup.Group{}
	events.SetLimit(r.cfg.Bot.MaxConcurrentEvents)

	group.Go(func() error {
		defer gw.Close()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev, ok := <-gw.Events():
				if !ok {
					return errors.New("gateway connection closed")
				}
				events.Go(func() error {
					if err := r.coordinator.HandleEvent(ctx, ev); err != nil {
						r.logger.Error("event handling failed", "channel_id", ev.ChannelID, "error", err)
					}
					return nil
				})
			}
		}
	})

	err = group.Wait()
	_ = events.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// buildCoordinator finishes wiring once the gateway sender exists.
func (r *Relay) buildCoordinator(gw gateway.Sender) {
	adminHandler := admin.NewHandler(r.cfg.Bot.DevUserID, r.store, r.models, gw, func(o *admin.Options) {
		o.Logger = r.logger.WithComponent("admin")
	})
	r.coordinator = dispatch.New(r.store, r.client, r.models, gw, func(o *dispatch.Options) {
		o.BotID = r.cfg.Bot.ID
		o.BotName = r.cfg.Bot.Name
		o.MaxChunkSize = r.cfg.Bot.MaxChunkSize
		o.RequestBudget = r.cfg.Session.Budget
		o.Temperature = r.cfg.Completion.Temperature
		o.Admin = adminHandler
		o.Logger = r.logger.WithComponent("dispatch")
	})
}

func (r *Relay) notifyStartup(ctx context.Context, gw gateway.Sender) {
	msg := fmt.Sprintf("%s started.", r.cfg.Bot.Name)
	if err := gw.DirectMessage(ctx, r.cfg.Bot.DevUserID, msg); err != nil {
		r.logger.Error("startup notification failed", "error", err)
	}
}

func (r *Relay) serveDiagnostics(ctx context.Context) error {
	srv := &http.Server{
		Addr:              r.cfg.Web.Addr,
		Handler:           web.NewRouter(r.store, r.models),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	r.logger.Info("diagnostics server listening", "addr", r.cfg.Web.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (r *Relay) evictionLoop(ctx context.Context) {
	ticker := time.NewTicker(evictionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.store.EvictIdle(r.cfg.Session.IdleTTL); n > 0 {
				r.logger.Info("evicted idle sessions", "count", n)
			}
		}
	}
}

// Store exposes the session store for diagnostics and tests.
func (r *Relay) Store() session.Store { return r.store }

// Models exposes the model selector.
func (r *Relay) Models() *completion.ModelSelector { return r.models }
