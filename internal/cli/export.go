package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/spf13/cobra"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
	"github.com/jmaptools/fastmail-cli/internal/attachment"
)

func (a *app) exportCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "export <email-id>",
		Short: "Export an email as a raw RFC 5322 message file",
		Args:  cobra.ExactArgs(1),
		RunE: a.run("export", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			email, err := client.GetEmail(ctx, args[0])
			if err != nil {
				return err
			}
			if email.BlobID == "" {
				return apperr.ResponseParse(fmt.Sprintf("email %s has no raw message blob", args[0]))
			}

			data, err := client.DownloadBlobNamed(ctx, email.BlobID, args[0]+".eml", "message/rfc822")
			if err != nil {
				return err
			}

			// Parse the downloaded bytes before writing anything so a
			// truncated or mangled download is caught here.
			entity, err := message.Read(bytes.NewReader(data))
			if err != nil && !message.IsUnknownCharset(err) {
				return apperr.Wrap(apperr.ResponseParse("downloaded message does not parse as RFC 5322"), err)
			}

			if outputFile == "" {
				outputFile = attachment.SanitizeFilename(args[0]) + ".eml"
			}
			if err := os.WriteFile(outputFile, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outputFile, err)
			}

			printOutput(a.stdout, successData(struct {
				File    string `json:"file"`
				Size    int    `json:"size"`
				Subject string `json:"subject"`
				From    string `json:"from"`
				Date    string `json:"date"`
			}{
				File:    outputFile,
				Size:    len(data),
				Subject: entity.Header.Get("Subject"),
				From:    entity.Header.Get("From"),
				Date:    entity.Header.Get("Date"),
			}))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: <email-id>.eml)")
	return cmd
}
