package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/jmaptools/fastmail-cli/internal/cli"
	"github.com/jmaptools/fastmail-cli/internal/tracing"
)

// version is stamped by the release build via -ldflags.
var version = "dev"

func main() {
	// A .env in the working directory supplies FASTMAIL_* variables for
	// development; absence is not an error.
	_ = godotenv.Load()

	// Logs go to stderr so stdout stays pure JSON for the envelopes and
	// the MCP transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	shutdown, err := tracing.Init(ctx, os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if err != nil {
		logger.Warn("Tracing disabled", slog.String("error", err.Error()))
		shutdown = nil
	}

	code := cli.Execute(ctx, version, logger)
	os.Exit(finish(ctx, code, shutdown, logger))
}

// finish flushes buffered spans before the process exits. os.Exit does not
// run deferred calls, so the tracing shutdown must happen on the exit path
// itself.
func finish(ctx context.Context, code int, shutdown func(context.Context) error, logger *slog.Logger) int {
	if shutdown != nil {
		if err := shutdown(ctx); err != nil {
			logger.Warn("Tracing shutdown failed", slog.String("error", err.Error()))
		}
	}
	return code
}

// logLevel reads FASTMAIL_LOG. The default is warn so normal runs emit
// nothing unless something is off.
func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("FASTMAIL_LOG")) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
