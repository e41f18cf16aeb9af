package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
	"github.com/jmaptools/fastmail-cli/internal/carddav"
	"github.com/jmaptools/fastmail-cli/internal/mcptools"
)

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run as MCP (Model Context Protocol) server for Claude integration",
		Args:  cobra.NoArgs,
		RunE: a.run("mcp", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			srv, err := mcptools.New(client, a.contactDirectory, a.version, a.logger)
			if err != nil {
				return err
			}
			return srv.Run()
		}),
	}
}

// contactDirectory builds the CardDAV client for the search_contacts tool.
// Missing credentials produce the guidance the tool surfaces verbatim.
func (a *app) contactDirectory(ctx context.Context) (mcptools.ContactDirectory, error) {
	store, err := a.store()
	if err != nil {
		return nil, err
	}
	username, err := store.Username()
	if err != nil {
		return nil, apperr.Config("Username not configured. Set FASTMAIL_USERNAME env var.")
	}
	appPassword, err := store.AppPassword()
	if err != nil {
		return nil, apperr.Config("App password not configured. Set FASTMAIL_APP_PASSWORD env var (API tokens don't work for CardDAV).")
	}
	return carddav.New(username, appPassword, a.logger), nil
}
