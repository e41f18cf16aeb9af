package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmaptools/fastmail-cli/internal/fastmail"
)

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <email-id>",
		Short: "Get a specific email by ID",
		Args:  cobra.ExactArgs(1),
		RunE: a.run("get", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			email, err := client.GetEmail(ctx, args[0])
			if err != nil {
				return err
			}
			printOutput(a.stdout, successData(email))
			return nil
		}),
	}
}

func (a *app) threadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "thread <email-id>",
		Short: "Get all emails in a thread/conversation",
		Args:  cobra.ExactArgs(1),
		RunE: a.run("thread", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			emails, err := client.GetThread(ctx, args[0])
			if err != nil {
				return err
			}
			printOutput(a.stdout, successData(emails))
			return nil
		}),
	}
}

func (a *app) searchCmd() *cobra.Command {
	var (
		filter           fastmail.SearchFilter
		mailboxName      string
		minSize, maxSize uint32
		limit            int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search emails with JMAP filters",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.run("search", func(ctx context.Context, args []string) error {
		client, err := a.client(ctx)
		if err != nil {
			return err
		}

		if mailboxName != "" {
			mailbox, err := client.FindMailbox(ctx, mailboxName)
			if err != nil {
				return err
			}
			filter.MailboxID = mailbox.ID
		}
		if cmd.Flags().Changed("min-size") {
			filter.MinSize = &minSize
		}
		if cmd.Flags().Changed("max-size") {
			filter.MaxSize = &maxSize
		}

		emails, err := client.SearchEmails(ctx, filter, limit)
		if err != nil {
			return err
		}
		printOutput(a.stdout, successData(emails))
		return nil
	})

	cmd.Flags().StringVarP(&filter.Text, "text", "t", "", "Full-text search (from, to, cc, bcc, subject, body)")
	cmd.Flags().StringVar(&filter.From, "from", "", "Filter by From header")
	cmd.Flags().StringVar(&filter.To, "to", "", "Filter by To header")
	cmd.Flags().StringVar(&filter.CC, "cc", "", "Filter by Cc header")
	cmd.Flags().StringVar(&filter.BCC, "bcc", "", "Filter by Bcc header")
	cmd.Flags().StringVar(&filter.Subject, "subject", "", "Filter by Subject")
	cmd.Flags().StringVar(&filter.Body, "body", "", "Filter by body content")
	cmd.Flags().StringVarP(&mailboxName, "mailbox", "m", "", "Filter by mailbox name")
	cmd.Flags().BoolVar(&filter.HasAttachment, "has-attachment", false, "Only emails with attachments")
	cmd.Flags().Uint32Var(&minSize, "min-size", 0, "Minimum email size in bytes")
	cmd.Flags().Uint32Var(&maxSize, "max-size", 0, "Maximum email size in bytes")
	cmd.Flags().StringVar(&filter.Before, "before", "", "Emails received before date (ISO 8601, e.g., 2024-01-01)")
	cmd.Flags().StringVar(&filter.After, "after", "", "Emails received on or after date (ISO 8601, e.g., 2024-01-01)")
	cmd.Flags().BoolVar(&filter.Unread, "unread", false, "Only unread emails")
	cmd.Flags().BoolVar(&filter.Flagged, "flagged", false, "Only flagged/starred emails")
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum results")
	return cmd
}
