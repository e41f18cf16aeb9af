package mcptools

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jmaptools/fastmail-cli/internal/attachment"
	"github.com/jmaptools/fastmail-cli/internal/fastmail"
)

func listAttachmentsTool() mcp.Tool {
	return mcp.NewTool("list_attachments",
		mcp.WithDescription("List all attachments on an email. Returns attachment names, types, sizes, and blob IDs for downloading."),
		mcp.WithString("email_id", mcp.Required(), mcp.Description("The email ID to get attachments from")),
	)
}

func (s *Server) handleListAttachments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	emailID, err := req.RequireString("email_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	email, err := s.mail.GetEmail(ctx, emailID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Email not found: %v", err)), nil
	}

	var lines []string
	for _, a := range email.Attachments {
		if a.BlobID == nil {
			continue
		}
		lines = append(lines, formatAttachment(len(lines)+1, &a))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("No attachments on this email."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Attachments (%d):\n\n%s", len(lines), strings.Join(lines, "\n\n"))), nil
}

func getAttachmentTool() mcp.Tool {
	return mcp.NewTool("get_attachment",
		mcp.WithDescription("Download an attachment. Text files and documents have text extracted and returned. Images are resized if needed and returned as viewable content."),
		mcp.WithString("email_id", mcp.Required(), mcp.Description("The email ID the attachment belongs to")),
		mcp.WithString("blob_id", mcp.Required(), mcp.Description("The blob ID of the attachment (from list_attachments)")),
	)
}

func (s *Server) handleGetAttachment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	emailID, err := req.RequireString("email_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	blobID, err := req.RequireString("blob_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	email, err := s.mail.GetEmail(ctx, emailID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Email not found: %v", err)), nil
	}

	part := findAttachment(email, blobID)
	if part == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Attachment not found: %s", blobID)), nil
	}

	contentType := "application/octet-stream"
	if part.Type != nil && *part.Type != "" {
		contentType = *part.Type
	}
	name := "attachment"
	if part.Name != nil && *part.Name != "" {
		name = *part.Name
	}

	data, err := s.mail.DownloadBlob(ctx, blobID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to download: %v", err)), nil
	}

	if attachment.IsImage(contentType, name) {
		mime := contentType
		if inferred, ok := attachment.InferImageMIME(name); ok {
			mime = inferred
		}
		processed, outMIME, err := attachment.ResizeImage(data, mime, attachment.MCPImageMaxBytes)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to process image: %v", err)), nil
		}
		encoded := base64.StdEncoding.EncodeToString(processed)
		return mcp.NewToolResultImage(name, encoded, outMIME), nil
	}

	if text, ok := attachment.ExtractText(data, contentType, name); ok {
		return mcp.NewToolResultText(fmt.Sprintf("Extracted text from %s:\n\n%s", name, text)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Binary attachment: %s\nType: %s\nSize: %d bytes\n\nThis file type cannot be displayed directly.",
		name, contentType, len(data))), nil
}

func findAttachment(email *fastmail.Email, blobID string) *fastmail.EmailBodyPart {
	for i := range email.Attachments {
		a := &email.Attachments[i]
		if a.BlobID != nil && *a.BlobID == blobID {
			return a
		}
	}
	return nil
}
