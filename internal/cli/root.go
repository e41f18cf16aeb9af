// Package cli is the cobra command tree for fastmail-cli. Every command
// prints a JSON envelope to stdout and exits 1 on failure; logs go to
// stderr so the envelope stays machine-readable.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jmaptools/fastmail-cli/internal/carddav"
	"github.com/jmaptools/fastmail-cli/internal/config"
	"github.com/jmaptools/fastmail-cli/internal/fastmail"
	"github.com/jmaptools/fastmail-cli/internal/tracing"
)

// errAborted marks a command the user declined to confirm. The prompt has
// already been written to stderr; no envelope is printed.
var errAborted = errors.New("aborted")

type app struct {
	version string
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, version string, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	a := &app{version: version, logger: logger, stdout: os.Stdout, stderr: os.Stderr}

	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, errAborted) {
			return 1
		}
		printOutput(a.stdout, errorOutput(err.Error()))
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fastmail-cli",
		Short:         "CLI for Fastmail's JMAP API",
		Version:       a.version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		a.authCmd(),
		a.listCmd(),
		a.getCmd(),
		a.threadCmd(),
		a.searchCmd(),
		a.sendCmd(),
		a.moveCmd(),
		a.spamCmd(),
		a.markReadCmd(),
		a.downloadCmd(),
		a.replyCmd(),
		a.forwardCmd(),
		a.maskedCmd(),
		a.contactsCmd(),
		a.exportCmd(),
		a.mcpCmd(),
	)
	return root
}

// run wraps a command body with a span, a correlation id, and error
// recording.
func (a *app) run(name string, fn func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, span := tracing.StartSpan(cmd.Context(), "cmd."+name)
		defer span.End()
		span.SetAttributes(tracing.Command(name))

		a.logger.DebugContext(ctx, "Command started",
			slog.String("command", name),
			slog.String("request_id", uuid.NewString()),
		)

		err := fn(ctx, args)
		if err != nil && !errors.Is(err, errAborted) {
			tracing.RecordError(span, err)
			a.logger.ErrorContext(ctx, "Command failed",
				slog.String("command", name),
				slog.String("error", err.Error()),
			)
		}
		return err
	}
}

func (a *app) store() (*config.Store, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// client loads the stored token and returns an authenticated JMAP client.
func (a *app) client(ctx context.Context) (*fastmail.Client, error) {
	store, err := a.store()
	if err != nil {
		return nil, err
	}
	token, err := store.Token()
	if err != nil {
		return nil, err
	}
	c := fastmail.New(token, a.logger)
	if err := c.Authenticate(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// carddavClient returns a CardDAV client from the stored app-password
// credentials.
func (a *app) carddavClient() (*carddav.Client, error) {
	store, err := a.store()
	if err != nil {
		return nil, err
	}
	username, err := store.Username()
	if err != nil {
		return nil, err
	}
	appPassword, err := store.AppPassword()
	if err != nil {
		return nil, err
	}
	return carddav.New(username, appPassword, a.logger), nil
}
