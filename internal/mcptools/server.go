// Package mcptools exposes the mail client as a Model Context Protocol tool
// server over stdio. Mutating tools that are easy to regret (sending,
// replying, forwarding, marking spam) sit behind a two-phase preview/confirm
// gate; everything else executes directly.
package mcptools

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jmaptools/fastmail-cli/internal/carddav"
	"github.com/jmaptools/fastmail-cli/internal/fastmail"
	"github.com/jmaptools/fastmail-cli/internal/tracing"
)

// Mailer is the slice of the JMAP client the tool handlers need.
// *fastmail.Client satisfies it; tests substitute a fake to observe which
// operations a tool performs.
type Mailer interface {
	ListMailboxes(ctx context.Context) ([]fastmail.Mailbox, error)
	FindMailbox(ctx context.Context, name string) (*fastmail.Mailbox, error)
	ListEmails(ctx context.Context, mailboxID string, limit int) ([]fastmail.Email, error)
	GetEmail(ctx context.Context, id string) (*fastmail.Email, error)
	SearchEmails(ctx context.Context, filter fastmail.SearchFilter, limit int) ([]fastmail.Email, error)
	GetThread(ctx context.Context, emailID string) ([]fastmail.Email, error)
	MoveEmail(ctx context.Context, emailID, mailboxID string) error
	MarkRead(ctx context.Context, emailID string, read bool) error
	MarkSpam(ctx context.Context, emailID string) error
	SendEmail(ctx context.Context, to, cc, bcc []fastmail.EmailAddress, subject, body, inReplyTo string) (string, error)
	ReplyEmail(ctx context.Context, emailID, body string, all bool, cc, bcc []fastmail.EmailAddress) (string, error)
	ForwardEmail(ctx context.Context, emailID string, to []fastmail.EmailAddress, body string, cc, bcc []fastmail.EmailAddress) (string, error)
	ListMaskedEmails(ctx context.Context) ([]fastmail.MaskedEmail, error)
	CreateMaskedEmail(ctx context.Context, forDomain, description, prefix string) (*fastmail.MaskedEmail, error)
	UpdateMaskedEmail(ctx context.Context, id, state, forDomain, description string) error
	DownloadBlob(ctx context.Context, blobID string) ([]byte, error)
}

// ContactDirectory searches CardDAV contacts.
type ContactDirectory interface {
	SearchContacts(ctx context.Context, query string) ([]carddav.Contact, error)
}

// DirectoryFunc builds the contact directory on first use. CardDAV needs
// app-password credentials that may be missing even when the JMAP token
// works, so the error is surfaced per call rather than at startup.
type DirectoryFunc func(ctx context.Context) (ContactDirectory, error)

// Server is the assembled MCP tool server.
type Server struct {
	mail      Mailer
	directory DirectoryFunc
	logger    *slog.Logger
	version   string
	registry  *Registry
}

// New assembles the server and registers the full tool set.
func New(mail Mailer, directory DirectoryFunc, version string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mail:      mail,
		directory: directory,
		logger:    logger,
		version:   version,
		registry:  NewRegistry(),
	}
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	return s, nil
}

// Registry exposes the tool set, mainly for tests and diagnostics.
func (s *Server) Registry() *Registry {
	return s.registry
}

const instructions = "Fastmail MCP Server - Read, search, and send emails via Claude.\n\n" +
	"## Reading Emails\n" +
	"1. Use `list_mailboxes` to see available folders\n" +
	"2. Use `list_emails` with a mailbox name to see emails\n" +
	"3. Use `get_email` with an email ID to read full content\n" +
	"4. Use `search_emails` to find emails across all folders\n\n" +
	"## Sending Emails (ALWAYS preview first!)\n" +
	"1. Use `send_email` with action=\"preview\" to draft\n" +
	"2. Review the preview with the user\n" +
	"3. Only use action=\"confirm\" after explicit user approval\n\n" +
	"## Safety Rules\n" +
	"- NEVER send without showing preview first\n" +
	"- NEVER confirm send without explicit user approval\n" +
	"- Be careful with mark_as_spam - it affects future filtering"

// Run serves the tool set over stdio until the client disconnects.
func (s *Server) Run() error {
	m := server.NewMCPServer("fastmail-cli", s.version,
		server.WithInstructions(instructions),
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.registry.Install(m, s.instrument)
	s.logger.Info("MCP server listening on stdio", slog.Int("tools", len(s.registry.Names())))
	return server.ServeStdio(m)
}

// instrument wraps a tool handler with a correlation id, a span, and
// start/finish logs.
func (s *Server) instrument(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := tracing.StartSpan(ctx, "tool."+name)
		defer span.End()

		logger := s.logger.With(
			slog.String("tool", name),
			slog.String("request_id", uuid.NewString()),
		)
		logger.DebugContext(ctx, "Tool call started")

		res, err := h(ctx, req)
		switch {
		case err != nil:
			tracing.RecordError(span, err)
			logger.ErrorContext(ctx, "Tool call failed", slog.String("error", err.Error()))
		case res != nil && res.IsError:
			logger.WarnContext(ctx, "Tool call returned error result")
		default:
			logger.DebugContext(ctx, "Tool call finished")
		}
		return res, err
	}
}

func (s *Server) registerTools() error {
	tools := []Tool{
		// Read-only tools.
		{Def: listMailboxesTool(), Handler: s.handleListMailboxes},
		{Def: listEmailsTool(), Handler: s.handleListEmails},
		{Def: getEmailTool(), Handler: s.handleGetEmail},
		{Def: searchEmailsTool(), Handler: s.handleSearchEmails},

		// Mutations.
		{Def: moveEmailTool(), Handler: s.handleMoveEmail},
		{Def: markAsReadTool(), Handler: s.handleMarkAsRead},
		{Def: markAsSpamTool(), Handler: s.handleMarkAsSpam, Gated: true},
		{Def: sendEmailTool(), Handler: s.handleSendEmail, Gated: true},
		{Def: replyToEmailTool(), Handler: s.handleReplyToEmail, Gated: true},
		{Def: forwardEmailTool(), Handler: s.handleForwardEmail, Gated: true},

		// Attachments.
		{Def: listAttachmentsTool(), Handler: s.handleListAttachments},
		{Def: getAttachmentTool(), Handler: s.handleGetAttachment},

		// Masked emails.
		{Def: listMaskedEmailsTool(), Handler: s.handleListMaskedEmails},
		{Def: createMaskedEmailTool(), Handler: s.handleCreateMaskedEmail},
		{Def: enableMaskedEmailTool(), Handler: s.handleEnableMaskedEmail},
		{Def: disableMaskedEmailTool(), Handler: s.handleDisableMaskedEmail},
		{Def: deleteMaskedEmailTool(), Handler: s.handleDeleteMaskedEmail},

		// Contacts.
		{Def: searchContactsTool(), Handler: s.handleSearchContacts},
	}
	for _, t := range tools {
		if err := s.registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}
