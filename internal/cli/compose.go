package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmaptools/fastmail-cli/internal/fastmail"
)

func (a *app) sendCmd() *cobra.Command {
	var (
		to, subject, body string
		cc, bcc, replyTo  string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an email",
		Args:  cobra.NoArgs,
		RunE: a.run("send", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}

			emailID, err := client.SendEmail(ctx,
				fastmail.ParseAddressList(to),
				fastmail.ParseAddressList(cc),
				fastmail.ParseAddressList(bcc),
				subject, body, replyTo)
			if err != nil {
				return err
			}

			printOutput(a.stdout, successData(struct {
				EmailID string `json:"email_id"`
			}{EmailID: emailID}))
			return nil
		}),
	}
	cmd.Flags().StringVar(&to, "to", "", "Recipient(s), comma-separated")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject line")
	cmd.Flags().StringVar(&body, "body", "", "Email body (plain text)")
	cmd.Flags().StringVar(&cc, "cc", "", "CC recipient(s), comma-separated")
	cmd.Flags().StringVar(&bcc, "bcc", "", "BCC recipient(s), comma-separated")
	cmd.Flags().StringVar(&replyTo, "reply-to", "", "In-Reply-To message ID (for threading)")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("subject")
	cmd.MarkFlagRequired("body")
	return cmd
}

func (a *app) replyCmd() *cobra.Command {
	var (
		body    string
		all     bool
		cc, bcc string
	)

	cmd := &cobra.Command{
		Use:   "reply <email-id>",
		Short: "Reply to an email",
		Args:  cobra.ExactArgs(1),
		RunE: a.run("reply", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}

			emailID, err := client.ReplyEmail(ctx, args[0], body, all,
				fastmail.ParseAddressList(cc),
				fastmail.ParseAddressList(bcc))
			if err != nil {
				return err
			}

			printOutput(a.stdout, successData(struct {
				EmailID   string `json:"email_id"`
				InReplyTo string `json:"in_reply_to"`
			}{EmailID: emailID, InReplyTo: args[0]}))
			return nil
		}),
	}
	cmd.Flags().StringVar(&body, "body", "", "Reply body (plain text)")
	cmd.Flags().BoolVar(&all, "all", false, "Reply to all recipients")
	cmd.Flags().StringVar(&cc, "cc", "", "Additional CC recipient(s), comma-separated")
	cmd.Flags().StringVar(&bcc, "bcc", "", "BCC recipient(s), comma-separated")
	cmd.MarkFlagRequired("body")
	return cmd
}

func (a *app) forwardCmd() *cobra.Command {
	var (
		to, body string
		cc, bcc  string
	)

	cmd := &cobra.Command{
		Use:   "forward <email-id>",
		Short: "Forward an email",
		Args:  cobra.ExactArgs(1),
		RunE: a.run("forward", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}

			emailID, err := client.ForwardEmail(ctx, args[0],
				fastmail.ParseAddressList(to), body,
				fastmail.ParseAddressList(cc),
				fastmail.ParseAddressList(bcc))
			if err != nil {
				return err
			}

			printOutput(a.stdout, successData(struct {
				EmailID       string `json:"email_id"`
				ForwardedFrom string `json:"forwarded_from"`
			}{EmailID: emailID, ForwardedFrom: args[0]}))
			return nil
		}),
	}
	cmd.Flags().StringVar(&to, "to", "", "Recipient(s), comma-separated")
	cmd.Flags().StringVar(&body, "body", "", "Message to include before forwarded content")
	cmd.Flags().StringVar(&cc, "cc", "", "CC recipient(s), comma-separated")
	cmd.Flags().StringVar(&bcc, "bcc", "", "BCC recipient(s), comma-separated")
	cmd.MarkFlagRequired("to")
	return cmd
}
