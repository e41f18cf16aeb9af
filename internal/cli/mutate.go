package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// confirmOrAbort enforces the -y flag on destructive commands: without it
// the prompt goes to stderr and the command exits 1 with no envelope.
func confirmOrAbort(yes bool, stderr io.Writer, format string, args ...any) error {
	if yes {
		return nil
	}
	fmt.Fprintf(stderr, format+"\n", args...)
	return errAborted
}

func (a *app) moveCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "move <email-id>",
		Short: "Move email to a mailbox",
		Args:  cobra.ExactArgs(1),
		RunE: a.run("move", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			mailbox, err := client.FindMailbox(ctx, to)
			if err != nil {
				return err
			}
			if err := client.MoveEmail(ctx, args[0], mailbox.ID); err != nil {
				return err
			}
			printOutput(a.stdout, successMsg(fmt.Sprintf("Moved email to %s", mailbox.Name)))
			return nil
		}),
	}
	cmd.Flags().StringVar(&to, "to", "", "Destination mailbox name")
	cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) spamCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "spam <email-id>",
		Short: "Mark email as spam",
		Args:  cobra.ExactArgs(1),
		RunE: a.run("spam", func(ctx context.Context, args []string) error {
			if err := confirmOrAbort(yes, a.stderr, "Mark email %s as spam? Use -y to confirm.", args[0]); err != nil {
				return err
			}
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			if err := client.MarkSpam(ctx, args[0]); err != nil {
				return err
			}
			printOutput(a.stdout, successMsg("Email marked as spam"))
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func (a *app) markReadCmd() *cobra.Command {
	var unread bool

	cmd := &cobra.Command{
		Use:   "mark-read <email-id>",
		Short: "Mark email as read or unread",
		Args:  cobra.ExactArgs(1),
		RunE: a.run("mark-read", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			if err := client.MarkRead(ctx, args[0], !unread); err != nil {
				return err
			}
			status := "read"
			if unread {
				status = "unread"
			}
			printOutput(a.stdout, successMsg(fmt.Sprintf("Email marked as %s", status)))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&unread, "unread", false, "Mark as unread instead of read")
	return cmd
}
