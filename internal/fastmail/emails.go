package fastmail

import (
	"context"
	"strings"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
	"github.com/jmaptools/fastmail-cli/internal/jmap"
	"github.com/jmaptools/fastmail-cli/internal/tracing"
)

var summaryProperties = []string{
	"id", "threadId", "mailboxIds", "keywords", "size", "receivedAt",
	"from", "to", "cc", "subject", "preview", "hasAttachment",
}

var fullProperties = []string{
	"id", "blobId", "threadId", "mailboxIds", "keywords", "size",
	"receivedAt", "messageId", "inReplyTo", "references",
	"from", "to", "cc", "bcc", "replyTo",
	"subject", "sentAt", "preview", "hasAttachment",
	"textBody", "htmlBody", "attachments", "bodyValues",
}

// ListEmails returns up to limit emails from mailboxID, newest first, with
// summary properties only.
func (c *Client) ListEmails(ctx context.Context, mailboxID string, limit int) ([]Email, error) {
	ctx, span := tracing.StartSpan(ctx, "ListEmails")
	defer span.End()

	b := jmap.NewBatch()
	b.Add("Email/query", map[string]any{
		"accountId": c.accountID,
		"filter":    map[string]any{"inMailbox": mailboxID},
		"sort":      []map[string]any{{"property": "receivedAt", "isAscending": false}},
		"limit":     limit,
	}, "q0")
	b.Add("Email/get", map[string]any{
		"accountId": c.accountID,
		"#ids": jmap.ResultReference{
			ResultOf: "q0",
			Name:     "Email/query",
			Path:     "/ids",
		},
		"properties": summaryProperties,
	}, "g0")

	resp, err := c.roundTrip(ctx, b)
	if err != nil {
		return nil, err
	}

	var out jmap.GetResponse[Email]
	if err := jmap.ResolveInto(resp, 1, "Email/get", &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

// GetEmail fetches one email with the full property set and its body
// values.
func (c *Client) GetEmail(ctx context.Context, id string) (*Email, error) {
	ctx, span := tracing.StartSpan(ctx, "GetEmail", tracing.EmailID(id))
	defer span.End()

	b := jmap.NewBatch()
	b.Add("Email/get", map[string]any{
		"accountId":           c.accountID,
		"ids":                 []string{id},
		"properties":          fullProperties,
		"fetchTextBodyValues": true,
		"fetchHTMLBodyValues": true,
	}, "g0")

	resp, err := c.roundTrip(ctx, b)
	if err != nil {
		return nil, err
	}

	var out jmap.GetResponse[Email]
	if err := jmap.ResolveInto(resp, 0, "Email/get", &out); err != nil {
		return nil, err
	}
	if len(out.List) == 0 {
		return nil, apperr.EmailNotFound(id)
	}
	return &out.List[0], nil
}

// SearchFilter selects emails server-side. Zero values mean "no
// constraint": boolean fields constrain only when true, matching how the
// flags surface in the CLI and tools.
type SearchFilter struct {
	Text    string
	From    string
	To      string
	CC      string
	BCC     string
	Subject string
	Body    string

	MailboxID     string
	HasAttachment bool
	MinSize       *uint32
	MaxSize       *uint32

	// Before and After accept RFC 3339 timestamps or bare YYYY-MM-DD
	// dates, which are taken as midnight UTC.
	Before string
	After  string

	Unread  bool
	Flagged bool
}

// wire translates the filter into the Email/query FilterCondition object.
func (f SearchFilter) wire() map[string]any {
	cond := map[string]any{}
	if f.Text != "" {
		cond["text"] = f.Text
	}
	if f.From != "" {
		cond["from"] = f.From
	}
	if f.To != "" {
		cond["to"] = f.To
	}
	if f.CC != "" {
		cond["cc"] = f.CC
	}
	if f.BCC != "" {
		cond["bcc"] = f.BCC
	}
	if f.Subject != "" {
		cond["subject"] = f.Subject
	}
	if f.Body != "" {
		cond["body"] = f.Body
	}
	if f.MailboxID != "" {
		cond["inMailbox"] = f.MailboxID
	}
	if f.HasAttachment {
		cond["hasAttachment"] = true
	}
	if f.MinSize != nil {
		cond["minSize"] = *f.MinSize
	}
	if f.MaxSize != nil {
		cond["maxSize"] = *f.MaxSize
	}
	if f.Before != "" {
		cond["before"] = normalizeDate(f.Before)
	}
	if f.After != "" {
		cond["after"] = normalizeDate(f.After)
	}
	if f.Unread {
		cond["notKeyword"] = "$seen"
	}
	if f.Flagged {
		cond["hasKeyword"] = "$flagged"
	}
	return cond
}

// normalizeDate widens a bare date to midnight UTC; timestamps pass
// through.
func normalizeDate(s string) string {
	if strings.Contains(s, "T") {
		return s
	}
	return s + "T00:00:00Z"
}

// SearchEmails runs a filtered query and returns matching emails, newest
// first, with summary properties.
func (c *Client) SearchEmails(ctx context.Context, filter SearchFilter, limit int) ([]Email, error) {
	ctx, span := tracing.StartSpan(ctx, "SearchEmails")
	defer span.End()

	b := jmap.NewBatch()
	b.Add("Email/query", map[string]any{
		"accountId": c.accountID,
		"filter":    filter.wire(),
		"sort":      []map[string]any{{"property": "receivedAt", "isAscending": false}},
		"limit":     limit,
	}, "q0")
	b.Add("Email/get", map[string]any{
		"accountId": c.accountID,
		"#ids": jmap.ResultReference{
			ResultOf: "q0",
			Name:     "Email/query",
			Path:     "/ids",
		},
		"properties": summaryProperties,
	}, "g0")

	resp, err := c.roundTrip(ctx, b)
	if err != nil {
		return nil, err
	}

	var out jmap.GetResponse[Email]
	if err := jmap.ResolveInto(resp, 1, "Email/get", &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

// GetThread returns every email in the thread containing emailID, in the
// server's order (oldest first), with full properties. The whole walk is
// one batch: the email's threadId feeds Thread/get, whose emailIds feed
// the final Email/get.
func (c *Client) GetThread(ctx context.Context, emailID string) ([]Email, error) {
	ctx, span := tracing.StartSpan(ctx, "GetThread", tracing.EmailID(emailID))
	defer span.End()

	b := jmap.NewBatch()
	b.Add("Email/get", map[string]any{
		"accountId":  c.accountID,
		"ids":        []string{emailID},
		"properties": []string{"threadId"},
	}, "t0")
	b.Add("Thread/get", map[string]any{
		"accountId": c.accountID,
		"#ids": jmap.ResultReference{
			ResultOf: "t0",
			Name:     "Email/get",
			Path:     "/list/*/threadId",
		},
	}, "t1")
	b.Add("Email/get", map[string]any{
		"accountId": c.accountID,
		"#ids": jmap.ResultReference{
			ResultOf: "t1",
			Name:     "Thread/get",
			Path:     "/list/*/emailIds",
		},
		"properties":          fullProperties,
		"fetchTextBodyValues": true,
		"fetchHTMLBodyValues": true,
	}, "t2")

	resp, err := c.roundTrip(ctx, b)
	if err != nil {
		return nil, err
	}

	var anchor jmap.GetResponse[Email]
	if err := jmap.ResolveInto(resp, 0, "Email/get", &anchor); err != nil {
		return nil, err
	}
	if len(anchor.List) == 0 {
		return nil, apperr.EmailNotFound(emailID)
	}

	var out jmap.GetResponse[Email]
	if err := jmap.ResolveInto(resp, 2, "Email/get", &out); err != nil {
		return nil, err
	}
	return out.List, nil
}
