package fastmail

import (
	"context"
	"strings"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
	"github.com/jmaptools/fastmail-cli/internal/jmap"
	"github.com/jmaptools/fastmail-cli/internal/tracing"
)

var mailboxProperties = []string{
	"id", "name", "parentId", "role",
	"totalEmails", "unreadEmails", "totalThreads", "unreadThreads",
	"sortOrder",
}

// ListMailboxes returns every mailbox on the account.
func (c *Client) ListMailboxes(ctx context.Context) ([]Mailbox, error) {
	ctx, span := tracing.StartSpan(ctx, "ListMailboxes")
	defer span.End()

	b := jmap.NewBatch()
	b.Add("Mailbox/get", map[string]any{
		"accountId":  c.accountID,
		"ids":        nil,
		"properties": mailboxProperties,
	}, "m0")

	resp, err := c.roundTrip(ctx, b)
	if err != nil {
		return nil, err
	}

	var out jmap.GetResponse[Mailbox]
	if err := jmap.ResolveInto(resp, 0, "Mailbox/get", &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

// FindMailbox resolves a mailbox by display name first, then by role.
// Matching is case-insensitive and exact; "Archive" finds the mailbox named
// Archive, "junk" finds the junk-role mailbox whatever it is named.
func (c *Client) FindMailbox(ctx context.Context, name string) (*Mailbox, error) {
	mailboxes, err := c.ListMailboxes(ctx)
	if err != nil {
		return nil, err
	}
	if m := matchMailbox(mailboxes, name); m != nil {
		return m, nil
	}
	return nil, apperr.MailboxNotFound(name)
}

// matchMailbox applies the name-then-role matching rule to an already
// fetched mailbox list.
func matchMailbox(mailboxes []Mailbox, name string) *Mailbox {
	target := strings.ToLower(name)
	for i := range mailboxes {
		if strings.ToLower(mailboxes[i].Name) == target {
			return &mailboxes[i]
		}
	}
	for i := range mailboxes {
		role := mailboxes[i].Role
		if role != nil && strings.ToLower(*role) == target {
			return &mailboxes[i]
		}
	}
	return nil
}
