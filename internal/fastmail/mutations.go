package fastmail

import (
	"context"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
	"github.com/jmaptools/fastmail-cli/internal/jmap"
	"github.com/jmaptools/fastmail-cli/internal/tracing"
)

// newSetError converts a per-item set failure into the method error the
// caller surfaces.
func newSetError(method string, se jmap.SetError) error {
	return apperr.NewMethodError(method, se.Type, se.Description)
}

// MoveEmail replaces the email's mailbox membership with the single target
// mailbox.
func (c *Client) MoveEmail(ctx context.Context, emailID, mailboxID string) error {
	ctx, span := tracing.StartSpan(ctx, "MoveEmail", tracing.EmailID(emailID))
	defer span.End()

	b := jmap.NewBatch()
	b.Add("Email/set", map[string]any{
		"accountId": c.accountID,
		"update": map[string]any{
			emailID: map[string]any{
				"mailboxIds": map[string]bool{mailboxID: true},
			},
		},
	}, "m0")

	resp, err := c.roundTrip(ctx, b)
	if err != nil {
		return err
	}
	return resolveUpdate(resp, 0, "Email/set", emailID, "Failed to move email")
}

// SetKeywords replaces the email's keyword set wholesale. Callers that want
// to flip one keyword fetch the current set first and modify it.
func (c *Client) SetKeywords(ctx context.Context, emailID string, keywords map[string]bool) error {
	ctx, span := tracing.StartSpan(ctx, "SetKeywords", tracing.EmailID(emailID))
	defer span.End()

	b := jmap.NewBatch()
	b.Add("Email/set", map[string]any{
		"accountId": c.accountID,
		"update": map[string]any{
			emailID: map[string]any{
				"keywords": keywords,
			},
		},
	}, "k0")

	resp, err := c.roundTrip(ctx, b)
	if err != nil {
		return err
	}
	return resolveUpdate(resp, 0, "Email/set", emailID, "Failed to update keywords")
}

// MarkRead sets or clears the $seen keyword, preserving every other keyword
// on the message.
func (c *Client) MarkRead(ctx context.Context, emailID string, read bool) error {
	email, err := c.GetEmail(ctx, emailID)
	if err != nil {
		return err
	}

	keywords := make(map[string]bool, len(email.Keywords)+1)
	for k, v := range email.Keywords {
		keywords[k] = v
	}
	if read {
		keywords["$seen"] = true
	} else {
		delete(keywords, "$seen")
	}
	return c.SetKeywords(ctx, emailID, keywords)
}

// MarkSpam moves the email into the junk-role mailbox. On Fastmail's side
// the move also trains the spam classifier, so callers gate this behind a
// confirmation.
func (c *Client) MarkSpam(ctx context.Context, emailID string) error {
	junk, err := c.FindMailbox(ctx, "junk")
	if err != nil {
		return err
	}
	return c.MoveEmail(ctx, emailID, junk.ID)
}

// resolveUpdate decodes a */set slot and promotes a notUpdated entry for id
// into a MethodError carrying fallback as its default description.
func resolveUpdate(resp *jmap.Response, index int, method, id, fallback string) error {
	var set jmap.SetResponse
	if err := jmap.ResolveInto(resp, index, method, &set); err != nil {
		return err
	}
	if se, ok := set.UpdateFailure(id); ok {
		if se.Description == "" {
			se.Description = fallback
		}
		return newSetError(method, se)
	}
	return nil
}
