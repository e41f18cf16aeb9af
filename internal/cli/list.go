package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmaptools/fastmail-cli/internal/fastmail"
)

func (a *app) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources",
	}
	cmd.AddCommand(a.listMailboxesCmd(), a.listEmailsCmd())
	return cmd
}

func (a *app) listMailboxesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mailboxes",
		Short: "List mailboxes (folders)",
		Args:  cobra.NoArgs,
		RunE: a.run("list-mailboxes", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			mailboxes, err := client.ListMailboxes(ctx)
			if err != nil {
				return err
			}
			printOutput(a.stdout, successData(mailboxes))
			return nil
		}),
	}
}

func (a *app) listEmailsCmd() *cobra.Command {
	var (
		mailboxName string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "emails",
		Short: "List emails in a mailbox",
		Args:  cobra.NoArgs,
		RunE: a.run("list-emails", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			mailbox, err := client.FindMailbox(ctx, mailboxName)
			if err != nil {
				return err
			}
			emails, err := client.ListEmails(ctx, mailbox.ID, limit)
			if err != nil {
				return err
			}

			printOutput(a.stdout, successData(struct {
				Mailbox fastmail.Mailbox `json:"mailbox"`
				Emails  []fastmail.Email `json:"emails"`
			}{Mailbox: *mailbox, Emails: emails}))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&mailboxName, "mailbox", "m", "INBOX", "Mailbox name")
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum results")
	return cmd
}
