package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) maskedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "masked",
		Short: "Manage masked email addresses",
	}
	cmd.AddCommand(
		a.maskedListCmd(),
		a.maskedCreateCmd(),
		a.maskedEnableCmd(),
		a.maskedDisableCmd(),
		a.maskedDeleteCmd(),
	)
	return cmd
}

func (a *app) maskedListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all masked email addresses",
		Args:  cobra.NoArgs,
		RunE: a.run("masked-list", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			masked, err := client.ListMaskedEmails(ctx)
			if err != nil {
				return err
			}
			printOutput(a.stdout, successData(masked))
			return nil
		}),
	}
}

func (a *app) maskedCreateCmd() *cobra.Command {
	var domain, description, prefix string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new masked email address",
		Args:  cobra.NoArgs,
		RunE: a.run("masked-create", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			masked, err := client.CreateMaskedEmail(ctx, domain, description, prefix)
			if err != nil {
				return err
			}
			printOutput(a.stdout, successData(masked))
			return nil
		}),
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Domain this masked email is for (e.g., https://example.com)")
	cmd.Flags().StringVar(&description, "description", "", "Description for the masked email")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Custom prefix for the email address (max 64 chars, a-z/0-9/underscore)")
	return cmd
}

func (a *app) maskedEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <id>",
		Short: "Enable a masked email address",
		Args:  cobra.ExactArgs(1),
		RunE: a.run("masked-enable", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			if err := client.EnableMaskedEmail(ctx, args[0]); err != nil {
				return err
			}
			printOutput(a.stdout, successMsg(fmt.Sprintf("Masked email %s enabled", args[0])))
			return nil
		}),
	}
}

func (a *app) maskedDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <id>",
		Short: "Disable a masked email address",
		Args:  cobra.ExactArgs(1),
		RunE: a.run("masked-disable", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			if err := client.DisableMaskedEmail(ctx, args[0]); err != nil {
				return err
			}
			printOutput(a.stdout, successMsg(fmt.Sprintf("Masked email %s disabled", args[0])))
			return nil
		}),
	}
}

func (a *app) maskedDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a masked email address",
		Args:  cobra.ExactArgs(1),
		RunE: a.run("masked-delete", func(ctx context.Context, args []string) error {
			if err := confirmOrAbort(yes, a.stderr, "Delete masked email %s? Use -y to confirm.", args[0]); err != nil {
				return err
			}
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			if err := client.DeleteMaskedEmail(ctx, args[0]); err != nil {
				return err
			}
			printOutput(a.stdout, successMsg(fmt.Sprintf("Masked email %s deleted", args[0])))
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
