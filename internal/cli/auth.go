package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmaptools/fastmail-cli/internal/fastmail"
)

func (a *app) authCmd() *cobra.Command {
	var useKeyring bool

	cmd := &cobra.Command{
		Use:   "auth <token>",
		Short: "Authenticate with Fastmail API token",
		Args:  cobra.ExactArgs(1),
		RunE: a.run("auth", func(ctx context.Context, args []string) error {
			token := args[0]

			// Validate the token against the session endpoint before
			// persisting anything.
			client := fastmail.New(token, a.logger)
			if err := client.Authenticate(ctx); err != nil {
				return err
			}
			username, err := client.Username()
			if err != nil {
				return err
			}

			store, err := a.store()
			if err != nil {
				return err
			}
			if err := store.SetToken(token, useKeyring); err != nil {
				return err
			}

			printOutput(a.stdout, successMsg(fmt.Sprintf("Authenticated as %s", username)))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&useKeyring, "keyring", false, "Store the token in the OS keyring instead of the config file")
	return cmd
}
