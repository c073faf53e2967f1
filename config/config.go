// Package config loads the relay's configuration from environment variables.
// A --dev style flag switches the gateway credential to its _DEV variant so a
// staging bot identity can run against the same environment file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates all settings consumed by the relay.
type Config struct {
	Gateway    GatewayConfig
	Completion CompletionConfig
	Bot        BotConfig
	Session    SessionConfig
	Web        WebConfig
}

// GatewayConfig describes the chat-gateway connection.
type GatewayConfig struct {
	URL   string
	Token string
}

// CompletionConfig describes the completion API client.
type CompletionConfig struct {
	// Provider selects the backend: "openai" or "anthropic".
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	// Timeout bounds each completion attempt.
	Timeout time.Duration
	// MaxRateLimitRetries bounds retries after HTTP 429 responses.
	MaxRateLimitRetries int
}

// BotConfig describes the bot identity and the developer gate.
type BotConfig struct {
	ID           string
	Name         string
	DevUserID    string
	SystemPrompt string
	// MaxChunkSize caps outbound message chunks in bytes.
	MaxChunkSize int
	// MaxConcurrentEvents bounds parallel event handling.
	MaxConcurrentEvents int
}

// SessionConfig describes conversation retention.
type SessionConfig struct {
	// Budget caps per-channel history size in bytes. Zero disables.
	Budget int
	// MaxTurns caps per-channel turn count. Zero disables.
	MaxTurns int
	// IdleTTL evicts channels idle longer than this. Zero disables.
	IdleTTL time.Duration
}

// WebConfig describes the diagnostics HTTP server.
type WebConfig struct {
	// Addr is the listen address; empty disables the server.
	Addr string
}

// Load reads configuration from the environment. devMode swaps in the _DEV
// gateway credential.
func Load(devMode bool) (*Config, error) {
	gatewayToken, err := requireEnv(gatewayTokenEnv(devMode))
	if err != nil {
		return nil, err
	}
	devUserID, err := requireEnv("CHATRELAY_DEV_USER_ID")
	if err != nil {
		return nil, err
	}

	provider := getEnvOrDefault("CHATRELAY_COMPLETION_PROVIDER", "openai")
	apiKey, err := requireEnv(apiKeyEnv(provider))
	if err != nil {
		return nil, err
	}

	temperature, err := parseFloatEnv("CHATRELAY_TEMPERATURE", 0.7)
	if err != nil {
		return nil, err
	}
	timeout, err := parseDurationEnv("CHATRELAY_COMPLETION_TIMEOUT", 90*time.Second)
	if err != nil {
		return nil, err
	}
	retries, err := parseIntEnv("CHATRELAY_RATE_LIMIT_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	chunkSize, err := parseIntEnv("CHATRELAY_MAX_CHUNK_SIZE", 2000)
	if err != nil {
		return nil, err
	}
	maxEvents, err := parseIntEnv("CHATRELAY_MAX_CONCURRENT_EVENTS", 32)
	if err != nil {
		return nil, err
	}
	budget, err := parseIntEnv("CHATRELAY_SESSION_BUDGET", 64*1024)
	if err != nil {
		return nil, err
	}
	maxTurns, err := parseIntEnv("CHATRELAY_SESSION_MAX_TURNS", 300)
	if err != nil {
		return nil, err
	}
	idleTTL, err := parseDurationEnv("CHATRELAY_SESSION_IDLE_TTL", 0)
	if err != nil {
		return nil, err
	}

	return &Config{
		Gateway: GatewayConfig{
			URL:   getEnvOrDefault("CHATRELAY_GATEWAY_URL", "wss://localhost:8443/gateway"),
			Token: gatewayToken,
		},
		Completion: CompletionConfig{
			Provider:            provider,
			APIKey:              apiKey,
			Model:               getEnvOrDefault("CHATRELAY_MODEL", defaultModel(provider)),
			Temperature:         temperature,
			Timeout:             timeout,
			MaxRateLimitRetries: retries,
		},
		Bot: BotConfig{
			ID:                  strings.TrimSpace(os.Getenv("CHATRELAY_BOT_ID")),
			Name:                getEnvOrDefault("CHATRELAY_BOT_NAME", "chatrelay"),
			DevUserID:           devUserID,
			SystemPrompt:        os.Getenv("CHATRELAY_SYSTEM_PROMPT"),
			MaxChunkSize:        chunkSize,
			MaxConcurrentEvents: maxEvents,
		},
		Session: SessionConfig{
			Budget:   budget,
			MaxTurns: maxTurns,
			IdleTTL:  idleTTL,
		},
		Web: WebConfig{
			Addr: strings.TrimSpace(os.Getenv("CHATRELAY_WEB_ADDR")),
		},
	}, nil
}

func gatewayTokenEnv(devMode bool) string {
	if devMode {
		return "CHATRELAY_GATEWAY_TOKEN_DEV"
	}
	return "CHATRELAY_GATEWAY_TOKEN"
}

func apiKeyEnv(provider string) string {
	if provider == "anthropic" {
		return "CHATRELAY_ANTHROPIC_TOKEN"
	}
	return "CHATRELAY_OPENAI_TOKEN"
}

func defaultModel(provider string) string {
	if provider == "anthropic" {
		return "claude-3-5-sonnet-20241022"
	}
	return "gpt-4.1-mini"
}

func requireEnv(key string) (string, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", fmt.Errorf("%s environment variable must be set", key)
	}
	return value, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}
