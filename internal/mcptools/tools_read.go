package mcptools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jmaptools/fastmail-cli/internal/fastmail"
)

const (
	defaultListLimit = 25
	maxListLimit     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func listMailboxesTool() mcp.Tool {
	return mcp.NewTool("list_mailboxes",
		mcp.WithDescription("List all mailboxes (folders) in the account with their unread counts. START HERE - use this to discover available folders before listing emails."),
	)
}

func (s *Server) handleListMailboxes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mailboxes, err := s.mail.ListMailboxes(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list mailboxes: %v", err)), nil
	}

	// Role-bearing mailboxes (inbox, sent, trash...) first, then by name.
	sort.SliceStable(mailboxes, func(i, j int) bool {
		ri, rj := mailboxes[i].Role != nil, mailboxes[j].Role != nil
		if ri != rj {
			return ri
		}
		return mailboxes[i].Name < mailboxes[j].Name
	})

	lines := make([]string, len(mailboxes))
	for i := range mailboxes {
		lines[i] = formatMailbox(&mailboxes[i])
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func listEmailsTool() mcp.Tool {
	return mcp.NewTool("list_emails",
		mcp.WithDescription("List emails in a specific mailbox/folder. Returns email summaries with ID, from, subject, date, and preview. Use the email ID with get_email for full content."),
		mcp.WithString("mailbox", mcp.Required(),
			mcp.Description("Mailbox name (e.g., 'INBOX', 'Sent', 'Archive') or role (e.g., 'inbox', 'sent', 'drafts', 'trash', 'junk')")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of emails to return (default 25, max 100)")),
	)
}

func (s *Server) handleListEmails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("mailbox")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := clampLimit(req.GetInt("limit", defaultListLimit))

	mailbox, err := s.mail.FindMailbox(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Mailbox not found: %s (%v)", name, err)), nil
	}

	emails, err := s.mail.ListEmails(ctx, mailbox.ID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list emails: %v", err)), nil
	}
	if len(emails) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No emails in %s", name)), nil
	}
	return mcp.NewToolResultText(joinSummaries(emails)), nil
}

func joinSummaries(emails []fastmail.Email) string {
	parts := make([]string, len(emails))
	for i := range emails {
		parts[i] = formatEmailSummary(&emails[i])
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func getEmailTool() mcp.Tool {
	return mcp.NewTool("get_email",
		mcp.WithDescription("Get the full content of a specific email by its ID. Automatically includes the full thread context (all emails in the conversation) sorted oldest-first."),
		mcp.WithString("email_id", mcp.Required(),
			mcp.Description("The email ID (obtained from list_emails or search_emails)")),
	)
}

func (s *Server) handleGetEmail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	emailID, err := req.RequireString("email_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	email, err := s.mail.GetEmail(ctx, emailID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Email not found: %s (%v)", emailID, err)), nil
	}

	// Thread context is best-effort; a lookup failure degrades to the
	// single email rather than failing the call.
	thread, err := s.mail.GetThread(ctx, emailID)
	if err != nil || len(thread) <= 1 {
		return mcp.NewToolResultText(formatEmailFull(email)), nil
	}

	sort.SliceStable(thread, func(i, j int) bool {
		return thread[i].ReceivedAt < thread[j].ReceivedAt
	})

	parts := make([]string, len(thread))
	for i := range thread {
		marker := ""
		if thread[i].ID == emailID {
			marker = ">>> SELECTED EMAIL <<<\n"
		}
		parts[i] = fmt.Sprintf("%s[%d/%d]\n%s", marker, i+1, len(thread), formatEmailFull(&thread[i]))
	}
	return mcp.NewToolResultText(fmt.Sprintf("Thread contains %d emails:\n\n%s",
		len(thread), strings.Join(parts, "\n\n========== THREAD ==========\n\n"))), nil
}

func searchEmailsTool() mcp.Tool {
	return mcp.NewTool("search_emails",
		mcp.WithDescription("Search for emails with flexible filters. Use 'query' for general search, or specific fields for precise filtering. Supports date ranges, attachment filtering, unread/flagged status."),
		mcp.WithString("query", mcp.Description("General search - searches subject, body, from, and to fields")),
		mcp.WithString("from", mcp.Description("Search sender address/name")),
		mcp.WithString("to", mcp.Description("Search recipient address/name")),
		mcp.WithString("cc", mcp.Description("Search CC recipients")),
		mcp.WithString("subject", mcp.Description("Search subject line only")),
		mcp.WithString("body", mcp.Description("Search email body only")),
		mcp.WithString("mailbox", mcp.Description("Limit search to a specific mailbox/folder")),
		mcp.WithBoolean("has_attachment", mcp.Description("Only emails with attachments")),
		mcp.WithString("before", mcp.Description("Emails before this date (YYYY-MM-DD or ISO 8601)")),
		mcp.WithString("after", mcp.Description("Emails after this date (YYYY-MM-DD or ISO 8601)")),
		mcp.WithBoolean("unread", mcp.Description("Only unread emails")),
		mcp.WithBoolean("flagged", mcp.Description("Only flagged/starred emails")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 25, max 100)")),
	)
}

func (s *Server) handleSearchEmails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := clampLimit(req.GetInt("limit", defaultListLimit))

	filter := fastmail.SearchFilter{
		Text:          req.GetString("query", ""),
		From:          req.GetString("from", ""),
		To:            req.GetString("to", ""),
		CC:            req.GetString("cc", ""),
		Subject:       req.GetString("subject", ""),
		Body:          req.GetString("body", ""),
		HasAttachment: req.GetBool("has_attachment", false),
		Before:        req.GetString("before", ""),
		After:         req.GetString("after", ""),
		Unread:        req.GetBool("unread", false),
		Flagged:       req.GetBool("flagged", false),
	}

	// An unknown mailbox name degrades to an unscoped search.
	if name := req.GetString("mailbox", ""); name != "" {
		if mailbox, err := s.mail.FindMailbox(ctx, name); err == nil {
			filter.MailboxID = mailbox.ID
		}
	}

	emails, err := s.mail.SearchEmails(ctx, filter, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
	}
	if len(emails) == 0 {
		return mcp.NewToolResultText("No emails found."), nil
	}
	return mcp.NewToolResultText(joinSummaries(emails)), nil
}
