package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jmaptools/fastmail-cli/internal/fastmail"
)

// Mode is the phase of a gated tool call. Gated tools must be called twice
// with the same parameters: once with ModePreview to render what would
// happen, then with ModeConfirm to do it.
type Mode string

const (
	ModePreview Mode = "preview"
	ModeConfirm Mode = "confirm"
)

// ParseMode validates the action parameter of a gated tool.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePreview, ModeConfirm:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid action %q: use \"preview\" or \"confirm\"", s)
	}
}

// ActionKind classifies the operations behind the gate.
type ActionKind string

const (
	ActionSend     ActionKind = "send"
	ActionReply    ActionKind = "reply"
	ActionForward  ActionKind = "forward"
	ActionMarkSpam ActionKind = "mark-spam"
)

// Action is one gated operation: the preview text rendered from the call's
// parameters, and the closure that performs the operation. The gate holds
// no state between the two calls; the preview is a pure function of the
// parameters, so calling again with the same parameters confirms exactly
// what was shown.
type Action struct {
	Kind    ActionKind
	Preview string
	Execute func(ctx context.Context) (string, error)
}

// resolve runs one phase of the gate. Preview returns the rendered text
// without touching Execute; confirm runs the operation. Operation failures
// surface as tool error results, not protocol errors.
func resolve(ctx context.Context, mode Mode, action Action) (*mcp.CallToolResult, error) {
	switch mode {
	case ModePreview:
		return mcp.NewToolResultText(action.Preview), nil
	case ModeConfirm:
		text, err := action.Execute(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q: use \"preview\" or \"confirm\"", mode)), nil
	}
}

func sendPreview(to, cc, bcc []fastmail.EmailAddress, subject, body string) string {
	return fmt.Sprintf(
		"EMAIL PREVIEW - Review before sending:\n\n"+
			"To: %s\n"+
			"CC: %s\n"+
			"BCC: %s\n"+
			"Subject: %s\n\n"+
			"--- Body ---\n"+
			"%s\n\n"+
			"---\n"+
			"To send this email, call this tool again with action: \"confirm\" and the same parameters.",
		formatAddressList(to), formatAddressList(cc), formatAddressList(bcc), subject, body)
}

func replyPreview(to, cc, bcc []fastmail.EmailAddress, subject, inReplyTo, body string) string {
	if inReplyTo == "" {
		inReplyTo = "(none)"
	}
	return fmt.Sprintf(
		"REPLY PREVIEW - Review before sending:\n\n"+
			"To: %s\n"+
			"CC: %s\n"+
			"BCC: %s\n"+
			"Subject: %s\n"+
			"In-Reply-To: %s\n\n"+
			"--- Your Reply ---\n"+
			"%s\n\n"+
			"---\n"+
			"To send this reply, call this tool again with action: \"confirm\" and the same parameters.",
		formatAddressList(to), formatAddressList(cc), formatAddressList(bcc), subject, inReplyTo, body)
}

func forwardPreview(to, cc, bcc []fastmail.EmailAddress, subject, sender, body, originalDate, originalSubject, originalBody string) string {
	if originalDate == "" {
		originalDate = "unknown date"
	}
	return fmt.Sprintf(
		"FORWARD PREVIEW - Review before sending:\n\n"+
			"To: %s\n"+
			"CC: %s\n"+
			"BCC: %s\n"+
			"Subject: %s\n"+
			"Forwarding from: %s\n\n"+
			"--- Your Message + Forwarded Content ---\n"+
			"%s\n\n"+
			"---------- Forwarded message ---------\n"+
			"From: %s\n"+
			"Date: %s\n"+
			"Subject: %s\n\n"+
			"%s\n\n"+
			"---\n"+
			"To send this forward, call this tool again with action: \"confirm\" and the same parameters.",
		formatAddressList(to), formatAddressList(cc), formatAddressList(bcc),
		subject, sender, body, sender, originalDate, originalSubject, originalBody)
}

func spamPreview(subject, sender string) string {
	return fmt.Sprintf(
		"SPAM PREVIEW - This will:\n"+
			"1. Move the email to Junk folder\n"+
			"2. Train the spam filter to mark similar emails as spam\n\n"+
			"Email: \"%s\"\n"+
			"From: %s\n\n"+
			"To proceed, call this tool again with action: \"confirm\"",
		subject, sender)
}
