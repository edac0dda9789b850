package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"

	"github.com/reshetovitsme/tgfeed/internal/di"
	"github.com/reshetovitsme/tgfeed/internal/infrastructure/mtproto"
	"github.com/reshetovitsme/tgfeed/internal/shared/config"
	httpServer "github.com/reshetovitsme/tgfeed/internal/transport/http"
)

func newLogger(level slog.Level) *slog.Logger {
	// Human readable logs on stdout, errors additionally as JSON on stderr
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	return slog.New(slogmulti.Fanout(textHandler, jsonHandler))
}

func main() {
	slog.SetDefault(newLogger(slog.LevelInfo))

	// Setup dependency injection
	injector, err := di.Setup()
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Level()))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, injector, cfg))
}

func run(ctx context.Context, injector do.Injector, cfg *config.Config) int {
	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	client, err := do.Invoke[*mtproto.Client](injector)
	if err != nil {
		slog.Error("Failed to create telegram client", "error", err)
		return 1
	}

	// Connect and load the dialogs so that peers are addressable by id
	if err := client.Connect(ctx); err != nil {
		slog.Error("Failed to connect to Telegram", "error", err)
		return 1
	}
	if err := client.Resync(ctx); err != nil {
		slog.Warn("Initial dialog sync failed", "error", err)
	}

	server := do.MustInvoke[*httpServer.Server](injector)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	if cfg.TelegramBotToken != "" {
		b, err := do.Invoke[*bot.Bot](injector)
		if err != nil {
			slog.Error("Failed to start control bot", "error", err)
		} else {
			go b.Start(ctx)
			slog.Info("Control bot started")
		}
	}

	slog.Info("Application started", "addr", cfg.Addr(), "env", cfg.AppEnv)
	slog.Info("Press Ctrl+C to stop")

	select {
	case <-ctx.Done():
		slog.Info("Shutting down...")
		return 0
	case err := <-serverErr:
		if err != nil {
			slog.Error("HTTP server stopped", "error", err)
			return 1
		}
		return 0
	}
}
