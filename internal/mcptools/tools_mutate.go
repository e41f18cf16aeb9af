package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jmaptools/fastmail-cli/internal/fastmail"
)

func moveEmailTool() mcp.Tool {
	return mcp.NewTool("move_email",
		mcp.WithDescription("Move an email to a different mailbox/folder."),
		mcp.WithString("email_id", mcp.Required(), mcp.Description("The email ID to move")),
		mcp.WithString("target_mailbox", mcp.Required(),
			mcp.Description("Target mailbox name (e.g., 'Archive', 'Trash') or role (e.g., 'archive', 'trash')")),
	)
}

func (s *Server) handleMoveEmail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	emailID, err := req.RequireString("email_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetName, err := req.RequireString("target_mailbox")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	email, err := s.mail.GetEmail(ctx, emailID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Email not found: %v", err)), nil
	}
	target, err := s.mail.FindMailbox(ctx, targetName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Mailbox not found: %s (%v)", targetName, err)), nil
	}

	if err := s.mail.MoveEmail(ctx, emailID, target.ID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to move email: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Moved email %q to %s", formatSubject(email.Subject), target.Name)), nil
}

func markAsReadTool() mcp.Tool {
	return mcp.NewTool("mark_as_read",
		mcp.WithDescription("Mark an email as read or unread."),
		mcp.WithString("email_id", mcp.Required(), mcp.Description("The email ID")),
		mcp.WithBoolean("read", mcp.Description("true to mark read, false to mark unread (default: true)")),
	)
}

func (s *Server) handleMarkAsRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	emailID, err := req.RequireString("email_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	read := req.GetBool("read", true)

	email, err := s.mail.GetEmail(ctx, emailID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Email not found: %v", err)), nil
	}

	if err := s.mail.MarkRead(ctx, emailID, read); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to mark as read: %v", err)), nil
	}
	status := "read"
	if !read {
		status = "unread"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Marked %q as %s", formatSubject(email.Subject), status)), nil
}

func markAsSpamTool() mcp.Tool {
	return mcp.NewTool("mark_as_spam",
		mcp.WithDescription("Mark an email as spam. This moves it to Junk AND trains the spam filter - affects future filtering! MUST use action='preview' first, then 'confirm' after user approval."),
		mcp.WithString("email_id", mcp.Required(), mcp.Description("The email ID to mark as spam")),
		mcp.WithString("action", mcp.Required(),
			mcp.Description("'preview' first to see what will happen, then 'confirm' after user approval")),
	)
}

func (s *Server) handleMarkAsSpam(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	emailID, err := req.RequireString("email_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode, err := s.requireMode(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	email, err := s.mail.GetEmail(ctx, emailID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Email not found: %v", err)), nil
	}
	subject := formatSubject(email.Subject)
	sender := formatAddressList(email.From)

	return resolve(ctx, mode, Action{
		Kind:    ActionMarkSpam,
		Preview: spamPreview(subject, sender),
		Execute: func(ctx context.Context) (string, error) {
			if err := s.mail.MarkSpam(ctx, emailID); err != nil {
				return "", fmt.Errorf("Failed to mark as spam: %v", err)
			}
			return fmt.Sprintf("Marked as spam: %q from %s", subject, sender), nil
		},
	})
}

func sendEmailTool() mcp.Tool {
	return mcp.NewTool("send_email",
		mcp.WithDescription("Compose and send a new email. CRITICAL: You MUST call with action='preview' first, show the user the draft, get explicit approval, then call again with action='confirm'. NEVER skip the preview step."),
		mcp.WithString("action", mcp.Required(),
			mcp.Description("'preview' to see the draft, 'confirm' to send - ALWAYS preview first")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Recipient email address(es), comma-separated")),
		mcp.WithString("subject", mcp.Required(), mcp.Description("Email subject line")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Email body text")),
		mcp.WithString("cc", mcp.Description("CC recipients, comma-separated")),
		mcp.WithString("bcc", mcp.Description("BCC recipients (hidden), comma-separated")),
	)
}

func (s *Server) handleSendEmail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := s.requireMode(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	subject, err := req.RequireString("subject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	toAddrs := fastmail.ParseAddressList(to)
	ccAddrs := fastmail.ParseAddressList(req.GetString("cc", ""))
	bccAddrs := fastmail.ParseAddressList(req.GetString("bcc", ""))

	return resolve(ctx, mode, Action{
		Kind:    ActionSend,
		Preview: sendPreview(toAddrs, ccAddrs, bccAddrs, subject, body),
		Execute: func(ctx context.Context) (string, error) {
			emailID, err := s.mail.SendEmail(ctx, toAddrs, ccAddrs, bccAddrs, subject, body, "")
			if err != nil {
				return "", fmt.Errorf("Failed to send email: %v", err)
			}
			return fmt.Sprintf("Email sent successfully!\nTo: %s\nSubject: %s\nEmail ID: %s",
				formatAddressList(toAddrs), subject, emailID), nil
		},
	})
}

func replyToEmailTool() mcp.Tool {
	return mcp.NewTool("reply_to_email",
		mcp.WithDescription("Reply to an existing email thread. CRITICAL: You MUST call with action='preview' first, show the user the draft, get explicit approval, then call again with action='confirm'. NEVER skip the preview step. For reply-all, set all=true."),
		mcp.WithString("action", mcp.Required(),
			mcp.Description("'preview' to see the draft, 'confirm' to send - ALWAYS preview first")),
		mcp.WithString("email_id", mcp.Required(), mcp.Description("The email ID to reply to")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Reply body text (your response, without quoting original)")),
		mcp.WithBoolean("all", mcp.Description("Reply to all recipients")),
		mcp.WithString("cc", mcp.Description("CC recipients for reply-all, comma-separated")),
		mcp.WithString("bcc", mcp.Description("BCC recipients (hidden), comma-separated")),
	)
}

func (s *Server) handleReplyToEmail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := s.requireMode(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	emailID, err := req.RequireString("email_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	all := req.GetBool("all", false)
	ccAddrs := fastmail.ParseAddressList(req.GetString("cc", ""))
	bccAddrs := fastmail.ParseAddressList(req.GetString("bcc", ""))

	original, err := s.mail.GetEmail(ctx, emailID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Email not found: %v", err)), nil
	}
	subject := fastmail.ReplySubject(original.Subject)
	inReplyTo := ""
	if len(original.MessageID) > 0 {
		inReplyTo = original.MessageID[0]
	}

	return resolve(ctx, mode, Action{
		Kind:    ActionReply,
		Preview: replyPreview(original.From, ccAddrs, bccAddrs, subject, inReplyTo, body),
		Execute: func(ctx context.Context) (string, error) {
			sentID, err := s.mail.ReplyEmail(ctx, emailID, body, all, ccAddrs, bccAddrs)
			if err != nil {
				return "", fmt.Errorf("Failed to send reply: %v", err)
			}
			return fmt.Sprintf("Reply sent successfully!\nTo: %s\nSubject: %s\nEmail ID: %s",
				formatAddressList(original.From), subject, sentID), nil
		},
	})
}

func forwardEmailTool() mcp.Tool {
	return mcp.NewTool("forward_email",
		mcp.WithDescription("Forward an email to new recipients. CRITICAL: You MUST call with action='preview' first, show the user the draft, get explicit approval, then call again with action='confirm'. NEVER skip the preview step."),
		mcp.WithString("action", mcp.Required(),
			mcp.Description("'preview' to see the draft, 'confirm' to send - ALWAYS preview first")),
		mcp.WithString("email_id", mcp.Required(), mcp.Description("The email ID to forward")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Recipient email address(es), comma-separated")),
		mcp.WithString("body", mcp.Description("Your message to include above the forwarded content")),
		mcp.WithString("cc", mcp.Description("CC recipients, comma-separated")),
		mcp.WithString("bcc", mcp.Description("BCC recipients (hidden), comma-separated")),
	)
}

func (s *Server) handleForwardEmail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := s.requireMode(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	emailID, err := req.RequireString("email_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body := req.GetString("body", "")
	toAddrs := fastmail.ParseAddressList(to)
	ccAddrs := fastmail.ParseAddressList(req.GetString("cc", ""))
	bccAddrs := fastmail.ParseAddressList(req.GetString("bcc", ""))

	original, err := s.mail.GetEmail(ctx, emailID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Email not found: %v", err)), nil
	}
	subject := fastmail.ForwardSubject(original.Subject)
	sender := formatAddressList(original.From)

	return resolve(ctx, mode, Action{
		Kind: ActionForward,
		Preview: forwardPreview(toAddrs, ccAddrs, bccAddrs, subject, sender, body,
			original.ReceivedAt, original.Subject, original.TextContent()),
		Execute: func(ctx context.Context) (string, error) {
			sentID, err := s.mail.ForwardEmail(ctx, emailID, toAddrs, body, ccAddrs, bccAddrs)
			if err != nil {
				return "", fmt.Errorf("Failed to forward email: %v", err)
			}
			return fmt.Sprintf("Email forwarded successfully!\nTo: %s\nSubject: %s\nEmail ID: %s",
				formatAddressList(toAddrs), subject, sentID), nil
		},
	})
}

func (s *Server) requireMode(req mcp.CallToolRequest) (Mode, error) {
	action, err := req.RequireString("action")
	if err != nil {
		return "", err
	}
	return ParseMode(action)
}
