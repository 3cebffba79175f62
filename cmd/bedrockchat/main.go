package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type CLI struct {
	Serve   ServeCommand   `cmd:"serve" help:"Start the chat server."`
	Chat    ChatCommand    `cmd:"chat" help:"Chat with a model through the server."`
	Send    SendCommand    `cmd:"send" help:"Send a single message, with optional attachments, and print the response."`
	Models  ModelsCommand  `cmd:"models" help:"List the models the server can use."`
	Version VersionCommand `cmd:"version" help:"Print the version of the chat server."`
}

func main() {
	// Environment variables take precedence over the .env file.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		getLogger("error").Error("failed to load .env file", slog.Any("error", err))
		os.Exit(1)
	}
	var cli CLI
	ctx := context.Background()
	kctx := kong.Parse(&cli, kong.UsageOnError(), kong.BindTo(ctx, (*context.Context)(nil)))
	if err := kctx.Run(); err != nil {
		log := getLogger("error")
		log.Error("error", slog.Any("error", err))
		os.Exit(1)
	}
}

func getLogger(level string) *slog.Logger {
	ll := slog.LevelInfo
	switch level {
	case "debug":
		ll = slog.LevelDebug
	case "info":
		ll = slog.LevelInfo
	case "warn":
		ll = slog.LevelWarn
	case "error":
		ll = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: ll,
	}))
}
