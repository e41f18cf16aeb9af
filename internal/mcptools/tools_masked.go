package mcptools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jmaptools/fastmail-cli/internal/fastmail"
)

func listMaskedEmailsTool() mcp.Tool {
	return mcp.NewTool("list_masked_emails",
		mcp.WithDescription("List all masked email addresses in the account."),
	)
}

func (s *Server) handleListMaskedEmails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	masked, err := s.mail.ListMaskedEmails(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list masked emails: %v", err)), nil
	}

	// Enabled addresses first, then by address.
	sort.SliceStable(masked, func(i, j int) bool {
		ei := masked[i].State == fastmail.MaskedStateEnabled
		ej := masked[j].State == fastmail.MaskedStateEnabled
		if ei != ej {
			return ei
		}
		return masked[i].Email < masked[j].Email
	})

	entries := make([]string, len(masked))
	for i := range masked {
		entries[i] = formatMaskedEmail(&masked[i])
	}
	return mcp.NewToolResultText(fmt.Sprintf("Masked Emails (%d):\n\n%s", len(masked), strings.Join(entries, "\n\n"))), nil
}

func createMaskedEmailTool() mcp.Tool {
	return mcp.NewTool("create_masked_email",
		mcp.WithDescription("Create a new masked email address. Perfect for signups where you want a disposable address. The masked email forwards to your inbox."),
		mcp.WithString("for_domain", mcp.Description("The website/domain this masked email is for (e.g., 'netflix.com')")),
		mcp.WithString("description", mcp.Description("A note to remember what this is for (e.g., 'Netflix account')")),
		mcp.WithString("prefix", mcp.Description("Custom prefix for the email address (optional, random if not specified)")),
	)
}

func (s *Server) handleCreateMaskedEmail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	masked, err := s.mail.CreateMaskedEmail(ctx,
		req.GetString("for_domain", ""),
		req.GetString("description", ""),
		req.GetString("prefix", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create masked email: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created masked email:\n\n%s", formatMaskedEmail(masked))), nil
}

func enableMaskedEmailTool() mcp.Tool {
	return mcp.NewTool("enable_masked_email",
		mcp.WithDescription("Enable a disabled masked email address so it can receive emails again."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The masked email ID (from list_masked_emails)")),
	)
}

func (s *Server) handleEnableMaskedEmail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.setMaskedState(ctx, req, fastmail.MaskedStateEnabled, "enabled", "enable")
}

func disableMaskedEmailTool() mcp.Tool {
	return mcp.NewTool("disable_masked_email",
		mcp.WithDescription("Disable a masked email address. Emails sent to it will be rejected but the address is preserved."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The masked email ID (from list_masked_emails)")),
	)
}

func (s *Server) handleDisableMaskedEmail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.setMaskedState(ctx, req, fastmail.MaskedStateDisabled, "disabled", "disable")
}

func deleteMaskedEmailTool() mcp.Tool {
	return mcp.NewTool("delete_masked_email",
		mcp.WithDescription("Permanently delete a masked email address. This cannot be undone!"),
		mcp.WithString("id", mcp.Required(), mcp.Description("The masked email ID (from list_masked_emails)")),
	)
}

func (s *Server) handleDeleteMaskedEmail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.setMaskedState(ctx, req, fastmail.MaskedStateDeleted, "deleted", "delete")
}

func (s *Server) setMaskedState(ctx context.Context, req mcp.CallToolRequest, state, done, verb string) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.mail.UpdateMaskedEmail(ctx, id, state, "", ""); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s masked email: %v", verb, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Masked email %s %s.", id, done)), nil
}

func searchContactsTool() mcp.Tool {
	return mcp.NewTool("search_contacts",
		mcp.WithDescription("Search contacts by name, email, or organization. Use this to find someone's email address when composing. Returns name, emails, phones, and organization. Requires FASTMAIL_APP_PASSWORD to be set (API tokens don't work for CardDAV)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query - matches name, email, or organization")),
	)
}

func (s *Server) handleSearchContacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	directory, err := s.directory(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	contacts, err := directory.SearchContacts(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search contacts: %v", err)), nil
	}
	if len(contacts) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No contacts found matching %q", query)), nil
	}

	entries := make([]string, len(contacts))
	for i := range contacts {
		entries[i] = formatContact(&contacts[i])
	}
	return mcp.NewToolResultText(fmt.Sprintf("Found %d contact(s):\n\n%s", len(contacts), strings.Join(entries, "\n\n---\n\n"))), nil
}
