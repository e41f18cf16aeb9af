package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmaptools/fastmail-cli/internal/carddav"
)

func (a *app) contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Read contacts over CardDAV (requires username and app password)",
	}
	cmd.AddCommand(a.contactsListCmd(), a.contactsSearchCmd())
	return cmd
}

func (a *app) contactsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all contacts from all address books",
		Args:  cobra.NoArgs,
		RunE: a.run("contacts-list", func(ctx context.Context, args []string) error {
			client, err := a.carddavClient()
			if err != nil {
				return err
			}

			books, err := client.ListAddressBooks(ctx)
			if err != nil {
				return err
			}
			// Progress goes to stderr; stdout carries only the envelope.
			fmt.Fprintf(a.stderr, "Found %d address book(s)\n", len(books))

			var all []carddav.Contact
			for _, book := range books {
				fmt.Fprintf(a.stderr, "Fetching from: %s\n", book.Name)
				contacts, err := client.ListContacts(ctx, book.Href)
				if err != nil {
					return err
				}
				all = append(all, contacts...)
			}

			printOutput(a.stdout, successData(all))
			return nil
		}),
	}
}

func (a *app) contactsSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search contacts by name, email, or organization",
		Args:  cobra.ExactArgs(1),
		RunE: a.run("contacts-search", func(ctx context.Context, args []string) error {
			client, err := a.carddavClient()
			if err != nil {
				return err
			}
			contacts, err := client.SearchContacts(ctx, args[0])
			if err != nil {
				return err
			}
			printOutput(a.stdout, successData(contacts))
			return nil
		}),
	}
}
