// Command chatrelay runs the mention relay: it connects to the chat gateway,
// forwards mentions to the configured completion API and replies in-channel.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/chatrelay/chatrelay"
	"github.com/chatrelay/chatrelay/config"
	"github.com/chatrelay/chatrelay/logging"
)

func main() {
	devMode := flag.Bool("dev", false, "use the development gateway credential")
	logFormat := flag.String("log-format", "json", "log format: json or text")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load(*devMode)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level := logging.LogLevelInfo
	if *verbose {
		level = logging.LogLevelDebug
	}
	logger := logging.New(&logging.Config{Level: level, Format: *logFormat, Output: os.Stdout})

	relay, err := chatrelay.New(cfg, func(o *chatrelay.Options) {
		o.Logger = logger
	})
	if err != nil {
		log.Fatalf("failed to build relay: %v", err)
	}

	logger.Info("relay starting", "bot", cfg.Bot.Name, "provider", cfg.Completion.Provider, "model", cfg.Completion.Model)
	if err := relay.Run(ctx); err != nil {
		logger.Error("relay stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("relay stopped")
}
