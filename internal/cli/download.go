package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmaptools/fastmail-cli/internal/attachment"
	"github.com/jmaptools/fastmail-cli/internal/fastmail"
)

func (a *app) downloadCmd() *cobra.Command {
	var (
		outputDir string
		format    string
		maxSize   string
	)

	cmd := &cobra.Command{
		Use:   "download <email-id>",
		Short: "Download attachments from an email",
		Args:  cobra.ExactArgs(1),
		RunE: a.run("download", func(ctx context.Context, args []string) error {
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			email, err := client.GetEmail(ctx, args[0])
			if err != nil {
				return err
			}

			if len(email.Attachments) == 0 {
				printOutput(a.stdout, errorOutput("No attachments found"))
				return nil
			}

			if format == "json" {
				return a.downloadAsJSON(ctx, client, email)
			}
			return a.downloadToFiles(ctx, client, email, outputDir, maxSize)
		}),
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: current directory)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: raw (save files) or json (extract text)")
	cmd.Flags().StringVar(&maxSize, "max-size", "", "Max size for images (e.g., 500K, 1M). Images larger than this are resized.")
	return cmd
}

// attachmentContent is one entry of the json download format. Text is null
// for attachments no text could be extracted from.
type attachmentContent struct {
	Filename    string  `json:"filename"`
	ContentType string  `json:"content_type"`
	Size        int     `json:"size"`
	Text        *string `json:"text"`
}

func (a *app) downloadAsJSON(ctx context.Context, client *fastmail.Client, email *fastmail.Email) error {
	var results []attachmentContent

	for _, part := range email.Attachments {
		if part.BlobID == nil {
			continue
		}
		filename := attachmentFilename(&part)
		contentType := ""
		if part.Type != nil {
			contentType = *part.Type
		}

		data, err := client.DownloadBlob(ctx, *part.BlobID)
		if err != nil {
			return err
		}

		entry := attachmentContent{Filename: filename, ContentType: contentType, Size: len(data)}
		if text, ok := attachment.ExtractText(data, contentType, filename); ok {
			entry.Text = &text
		}
		results = append(results, entry)
	}

	printOutput(a.stdout, successData(results))
	return nil
}

func (a *app) downloadToFiles(ctx context.Context, client *fastmail.Client, email *fastmail.Email, outputDir, maxSize string) error {
	// Per the flag contract an unparseable size is ignored, not an error.
	var maxBytes int64
	if n, ok := attachment.ParseSize(maxSize); ok {
		maxBytes = n
	}
	if outputDir == "" {
		outputDir = "."
	}

	var files []string
	for _, part := range email.Attachments {
		if part.BlobID == nil {
			continue
		}
		filename := attachmentFilename(&part)
		contentType := "application/octet-stream"
		if part.Type != nil && *part.Type != "" {
			contentType = *part.Type
		}

		data, err := client.DownloadBlob(ctx, *part.BlobID)
		if err != nil {
			return err
		}

		if maxBytes > 0 && attachment.IsImage(contentType, filename) {
			mime := contentType
			if inferred, ok := attachment.InferImageMIME(filename); ok {
				mime = inferred
			}
			// A failed resize falls back to the original bytes.
			if resized, outMIME, err := attachment.ResizeImage(data, mime, maxBytes); err == nil {
				data = resized
				filename = resizedFilename(filename, outMIME)
			}
		}

		path := filepath.Join(outputDir, attachment.SanitizeFilename(filename))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		files = append(files, path)
	}

	printOutput(a.stdout, successData(struct {
		Files []string `json:"files"`
	}{Files: files}))
	return nil
}

func attachmentFilename(part *fastmail.EmailBodyPart) string {
	if part.Name != nil && *part.Name != "" {
		return *part.Name
	}
	return *part.BlobID + ".bin"
}

// resizedFilename swaps the extension to .jpg when resizing re-encoded the
// image as JPEG under a different name.
func resizedFilename(filename, mime string) string {
	if mime != "image/jpeg" {
		return filename
	}
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") {
		return filename
	}
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	if stem == "" {
		stem = filename
	}
	return stem + ".jpg"
}
