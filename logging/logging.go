// Package logging provides a small abstraction over slog so the relay's
// packages depend on a minimal interface while the binary picks the handler
// and level. It also offers a RelayLogger with channel/guild context and a
// per-exchange record helper.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled
// from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// Logger is the minimal logging interface consumed across the relay.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NoOpLogger discards all log messages. Useful for tests.
type NoOpLogger struct{}

// Debug discards the message.
func (NoOpLogger) Debug(string, ...any) {}

// Info discards the message.
func (NoOpLogger) Info(string, ...any) {}

// Warn discards the message.
func (NoOpLogger) Warn(string, ...any) {}

// Error discards the message.
func (NoOpLogger) Error(string, ...any) {}

// Config configures construction of a RelayLogger.
type Config struct {
	Level  LogLevel
	Format string // json or text
	Output io.Writer
}

// DefaultConfig returns a baseline JSON info level configuration.
func DefaultConfig() *Config {
	return &Config{Level: LogLevelInfo, Format: "json", Output: os.Stdout}
}

// RelayLogger wraps slog.Logger with channel/guild context cloning and a
// structured per-exchange record. Cheap to copy via With* methods.
type RelayLogger struct {
	logger *slog.Logger
}

// New builds a RelayLogger from a config (or defaults if nil).
func New(cfg *Config) *RelayLogger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return &RelayLogger{logger: slog.New(handler)}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithChannel returns a logger that attaches channel and guild identifiers
// to every record.
func (l *RelayLogger) WithChannel(channelID, guildID string) *RelayLogger {
	attrs := []any{slog.String("channel_id", channelID)}
	if guildID != "" {
		attrs = append(attrs, slog.String("guild_id", guildID))
	}
	return &RelayLogger{logger: l.logger.With(attrs...)}
}

// WithComponent sets the logical component (dispatch, gateway, web, ...).
func (l *RelayLogger) WithComponent(c string) *RelayLogger {
	return &RelayLogger{logger: l.logger.With(slog.String("component", c))}
}

// Debug logs at debug level.
func (l *RelayLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }

// Info logs at info level.
func (l *RelayLogger) Info(msg string, args ...any) { l.logger.Info(msg, args...) }

// Warn logs at warn level.
func (l *RelayLogger) Warn(msg string, args ...any) { l.logger.Warn(msg, args...) }

// Error logs at error level.
func (l *RelayLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// LogExchange records one completed (or failed) completion exchange: model,
// latency, token usage and outcome.
func (l *RelayLogger) LogExchange(exchangeID, model string, promptTokens, completionTokens int, latency time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("exchange_id", exchangeID),
		slog.String("model", model),
		slog.Int("prompt_tokens", promptTokens),
		slog.Int("completion_tokens", completionTokens),
		slog.Duration("latency", latency),
		slog.Bool("success", err == nil),
	}
	level := slog.LevelInfo
	msg := "Exchange completed"
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level = slog.LevelError
		msg = "Exchange failed"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
