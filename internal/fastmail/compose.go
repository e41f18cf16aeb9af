package fastmail

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
	"github.com/jmaptools/fastmail-cli/internal/jmap"
	"github.com/jmaptools/fastmail-cli/internal/tracing"
)

// Creation ids used inside the compose batch. The submission call refers
// to the draft by "#draft" before the server has assigned it an id.
const (
	draftCreationID      = "draft"
	submissionCreationID = "submission"
)

// ReplySubject prefixes "Re: " unless the subject already has one in any
// case. Applying it twice changes nothing.
func ReplySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

// ForwardSubject prefixes "Fwd: " unless the subject already has one in
// any case. Applying it twice changes nothing.
func ForwardSubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "fwd:") {
		return subject
	}
	return "Fwd: " + subject
}

// AppendReferences appends each id to refs unless already present,
// preserving order. Used to extend a References chain with the replied-to
// message ids; re-applying with the same ids changes nothing.
func AppendReferences(refs, ids []string) []string {
	out := make([]string, 0, len(refs)+len(ids))
	out = append(out, refs...)
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// ForwardBody builds the outgoing body for a forward: the caller's message,
// then the attribution block, then the original text.
func ForwardBody(original *Email, message string) string {
	sender := original.SenderDisplay()
	date := original.ReceivedAt
	if date == "" {
		date = "unknown date"
	}
	return fmt.Sprintf("%s\n\n---------- Forwarded message ---------\nFrom: %s\nDate: %s\nSubject: %s\n\n%s",
		message, sender, date, original.Subject, original.TextContent())
}

// replyRecipients assembles the To and CC lists for a reply. To always
// starts from the original senders. With all=true the original To and CC
// recipients are appended to To and CC respectively, excluding any address
// equal (case-insensitively) to the sending identity's own. extraCC is
// kept even when it duplicates an original recipient; the caller asked for
// it explicitly.
func replyRecipients(original *Email, identityEmail string, all bool, extraCC []EmailAddress) (to, cc []EmailAddress) {
	self := strings.ToLower(identityEmail)

	to = append(to, original.From...)
	cc = append(cc, extraCC...)
	if !all {
		return to, cc
	}
	for _, addr := range original.To {
		if strings.ToLower(addr.Email) != self {
			to = append(to, addr)
		}
	}
	for _, addr := range original.CC {
		if strings.ToLower(addr.Email) != self {
			cc = append(cc, addr)
		}
	}
	return to, cc
}

// draftSpec is a fully resolved outgoing message, ready to create.
type draftSpec struct {
	From       EmailAddress
	To         []EmailAddress
	CC         []EmailAddress
	BCC        []EmailAddress
	Subject    string
	Body       string
	InReplyTo  []string
	References []string
}

// sendPrereqs resolves everything a send needs before any mutation: the
// sending identity (fail fast when the account has none) and the drafts
// and sent mailboxes, from a single mailbox listing.
func (c *Client) sendPrereqs(ctx context.Context) (identity *Identity, drafts, sent *Mailbox, err error) {
	identities, err := c.ListIdentities(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(identities) == 0 {
		return nil, nil, nil, apperr.IdentityNotFound()
	}

	mailboxes, err := c.ListMailboxes(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	drafts = matchMailbox(mailboxes, "drafts")
	if drafts == nil {
		return nil, nil, nil, apperr.MailboxNotFound("drafts")
	}
	sent = matchMailbox(mailboxes, "sent")
	if sent == nil {
		return nil, nil, nil, apperr.MailboxNotFound("sent")
	}
	return &identities[0], drafts, sent, nil
}

// submitDraft runs the compose batch: Email/set creates the draft ("e0"),
// EmailSubmission/set submits it by creation id ("s0") and patches the
// message into Sent with $draft cleared and $seen set once the submission
// succeeds. The create slot is checked before the submission slot so a
// failed create never reads as a half-sent message.
func (c *Client) submitDraft(ctx context.Context, identityID string, draftsID, sentID string, spec draftSpec) (string, error) {
	draft := map[string]any{
		"mailboxIds": map[string]bool{draftsID: true},
		"from":       []EmailAddress{spec.From},
		"to":         spec.To,
		"subject":    spec.Subject,
		"bodyValues": map[string]any{
			"body": map[string]any{"value": spec.Body, "charset": "utf-8"},
		},
		"textBody": []map[string]any{
			{"partId": "body", "type": "text/plain"},
		},
		"keywords": map[string]bool{"$draft": true},
	}
	if len(spec.CC) > 0 {
		draft["cc"] = spec.CC
	}
	if len(spec.BCC) > 0 {
		draft["bcc"] = spec.BCC
	}
	if len(spec.InReplyTo) > 0 {
		draft["inReplyTo"] = spec.InReplyTo
	}
	if len(spec.References) > 0 {
		draft["references"] = spec.References
	}

	b := jmap.NewBatch()
	b.Add("Email/set", map[string]any{
		"accountId": c.accountID,
		"create":    map[string]any{draftCreationID: draft},
	}, "e0")
	b.Add("EmailSubmission/set", map[string]any{
		"accountId": c.accountID,
		"create": map[string]any{
			submissionCreationID: map[string]any{
				"identityId": identityID,
				"emailId":    "#" + draftCreationID,
			},
		},
		"onSuccessUpdateEmail": map[string]any{
			"#" + submissionCreationID: map[string]any{
				"mailboxIds": map[string]bool{sentID: true},
				"keywords":   map[string]any{"$draft": nil, "$seen": true},
			},
		},
	}, "s0")

	resp, err := c.roundTrip(ctx, b)
	if err != nil {
		return "", err
	}

	var emailSet jmap.SetResponse
	if err := jmap.ResolveInto(resp, 0, "Email/set", &emailSet); err != nil {
		return "", err
	}
	if se, ok := emailSet.CreateFailure(draftCreationID); ok {
		if se.Description == "" {
			se.Description = "Failed to create email"
		}
		return "", apperr.NewMethodError("Email/set", se.Type, se.Description)
	}
	emailID, found := emailSet.CreatedID(draftCreationID)
	if !found {
		return "", apperr.NewMethodError("Email/set", "unknown", "Failed to create email")
	}
	if emailID == "" {
		return "", apperr.NewMethodError("Email/set", "unknown", "No email ID returned")
	}

	// From here the draft exists server-side: a submission failure must
	// name the stranded draft, never read as "nothing happened".
	var subSet jmap.SetResponse
	if err := jmap.ResolveInto(resp, 1, "EmailSubmission/set", &subSet); err != nil {
		return "", fmt.Errorf("draft %s created but submission failed: %w", emailID, err)
	}
	if se, ok := subSet.CreateFailure(submissionCreationID); ok {
		return "", fmt.Errorf("draft %s created but submission failed: %w", emailID,
			apperr.NewMethodError("EmailSubmission/set", se.Type, se.Description))
	}
	if _, ok := subSet.CreatedID(submissionCreationID); !ok {
		return "", fmt.Errorf("draft %s created but submission failed: %w", emailID,
			apperr.NewMethodError("EmailSubmission/set", "unknown", "No submission returned"))
	}

	c.logger.InfoContext(ctx, "Email sent", slog.String("email_id", emailID))
	return emailID, nil
}

// SendEmail composes and submits a new message, returning the created
// email's id. cc and bcc may be empty. inReplyTo optionally threads the
// message under an existing message id.
func (c *Client) SendEmail(ctx context.Context, to, cc, bcc []EmailAddress, subject, body, inReplyTo string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "SendEmail")
	defer span.End()

	identity, drafts, sent, err := c.sendPrereqs(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		return "", err
	}

	spec := draftSpec{
		From:    identity.Address(),
		To:      to,
		CC:      cc,
		BCC:     bcc,
		Subject: subject,
		Body:    body,
	}
	if inReplyTo != "" {
		spec.InReplyTo = []string{inReplyTo}
	}
	return c.submitDraft(ctx, identity.ID, drafts.ID, sent.ID, spec)
}

// ReplyEmail sends a reply to emailID. The subject gains a single "Re: "
// prefix, threading headers chain onto the original, and with all=true the
// original recipients are included minus the sender's own address.
func (c *Client) ReplyEmail(ctx context.Context, emailID, body string, all bool, cc, bcc []EmailAddress) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "ReplyEmail", tracing.EmailID(emailID))
	defer span.End()

	original, err := c.GetEmail(ctx, emailID)
	if err != nil {
		tracing.RecordError(span, err)
		return "", err
	}
	identity, drafts, sent, err := c.sendPrereqs(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		return "", err
	}

	to, ccList := replyRecipients(original, identity.Email, all, cc)

	spec := draftSpec{
		From:       identity.Address(),
		To:         to,
		CC:         ccList,
		BCC:        bcc,
		Subject:    ReplySubject(original.Subject),
		Body:       body,
		InReplyTo:  original.MessageID,
		References: AppendReferences(original.References, original.MessageID),
	}
	return c.submitDraft(ctx, identity.ID, drafts.ID, sent.ID, spec)
}

// ForwardEmail sends emailID onward to new recipients with an attribution
// block between the caller's message and the original text. Forwards start
// a fresh thread: no In-Reply-To or References headers are set.
func (c *Client) ForwardEmail(ctx context.Context, emailID string, to []EmailAddress, body string, cc, bcc []EmailAddress) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "ForwardEmail", tracing.EmailID(emailID))
	defer span.End()

	original, err := c.GetEmail(ctx, emailID)
	if err != nil {
		tracing.RecordError(span, err)
		return "", err
	}
	identity, drafts, sent, err := c.sendPrereqs(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		return "", err
	}

	spec := draftSpec{
		From:    identity.Address(),
		To:      to,
		CC:      cc,
		BCC:     bcc,
		Subject: ForwardSubject(original.Subject),
		Body:    ForwardBody(original, body),
	}
	return c.submitDraft(ctx, identity.ID, drafts.ID, sent.ID, spec)
}
