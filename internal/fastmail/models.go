// Package fastmail is the resource-level JMAP client for Fastmail: session
// bootstrap, mailboxes, emails, identities, masked emails, the compose
// workflow, and blob downloads. Wire mechanics live in internal/jmap;
// HTTP mechanics live in internal/transport.
package fastmail

import (
	"fmt"
	"sort"
	"strings"
)

// EmailAddress is a name/address pair as it appears in message headers.
type EmailAddress struct {
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

// String formats the address as "Name <email>" when a display name is
// present, or the bare address otherwise.
func (a EmailAddress) String() string {
	if a.Name != nil && *a.Name != "" {
		return fmt.Sprintf("%s <%s>", *a.Name, a.Email)
	}
	return a.Email
}

// Addr builds a bare EmailAddress.
func Addr(email string) EmailAddress {
	return EmailAddress{Email: email}
}

// NamedAddr builds an EmailAddress with a display name.
func NamedAddr(name, email string) EmailAddress {
	return EmailAddress{Name: &name, Email: email}
}

// ParseAddressList splits a comma-separated recipient string. Entries in
// "Display Name <user@domain>" form keep the display name; bare addresses
// get none. Empty entries are dropped.
func ParseAddressList(input string) []EmailAddress {
	var out []EmailAddress
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if open := strings.LastIndex(part, "<"); open != -1 && strings.HasSuffix(part, ">") {
			email := strings.TrimSpace(part[open+1 : len(part)-1])
			name := strings.TrimSpace(part[:open])
			if email == "" {
				continue
			}
			if name == "" {
				out = append(out, Addr(email))
			} else {
				out = append(out, NamedAddr(name, email))
			}
			continue
		}
		out = append(out, Addr(part))
	}
	return out
}

// Mailbox is a JMAP mailbox (folder).
type Mailbox struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ParentID      *string `json:"parentId"`
	Role          *string `json:"role"`
	TotalEmails   int     `json:"totalEmails"`
	UnreadEmails  int     `json:"unreadEmails"`
	TotalThreads  int     `json:"totalThreads"`
	UnreadThreads int     `json:"unreadThreads"`
	SortOrder     int     `json:"sortOrder"`
}

// EmailBodyPart is one node of a message's body structure.
type EmailBodyPart struct {
	PartID *string `json:"partId"`
	BlobID *string `json:"blobId"`
	Size   int64   `json:"size"`
	Name   *string `json:"name"`
	Type   *string `json:"type"`
}

// EmailBodyValue is the fetched content of one body part.
type EmailBodyValue struct {
	Value       string `json:"value"`
	IsTruncated bool   `json:"isTruncated"`
}

// Email is a JMAP email object. List operations populate only the summary
// properties; GetEmail fetches everything including body values.
type Email struct {
	ID            string                    `json:"id"`
	BlobID        string                    `json:"blobId,omitempty"`
	ThreadID      string                    `json:"threadId,omitempty"`
	MailboxIDs    map[string]bool           `json:"mailboxIds,omitempty"`
	Keywords      map[string]bool           `json:"keywords,omitempty"`
	Size          int64                     `json:"size,omitempty"`
	ReceivedAt    string                    `json:"receivedAt,omitempty"`
	MessageID     []string                  `json:"messageId,omitempty"`
	InReplyTo     []string                  `json:"inReplyTo,omitempty"`
	References    []string                  `json:"references,omitempty"`
	From          []EmailAddress            `json:"from,omitempty"`
	To            []EmailAddress            `json:"to,omitempty"`
	CC            []EmailAddress            `json:"cc,omitempty"`
	BCC           []EmailAddress            `json:"bcc,omitempty"`
	ReplyTo       []EmailAddress            `json:"replyTo,omitempty"`
	Subject       string                    `json:"subject,omitempty"`
	SentAt        string                    `json:"sentAt,omitempty"`
	Preview       string                    `json:"preview,omitempty"`
	HasAttachment bool                      `json:"hasAttachment,omitempty"`
	TextBody      []EmailBodyPart           `json:"textBody,omitempty"`
	HTMLBody      []EmailBodyPart           `json:"htmlBody,omitempty"`
	Attachments   []EmailBodyPart           `json:"attachments,omitempty"`
	BodyValues    map[string]EmailBodyValue `json:"bodyValues,omitempty"`
}

// IsUnread reports whether the message lacks the $seen keyword.
func (e *Email) IsUnread() bool {
	return !e.Keywords["$seen"]
}

// IsFlagged reports whether the message carries the $flagged keyword.
func (e *Email) IsFlagged() bool {
	return e.Keywords["$flagged"]
}

// IsDraft reports whether the message carries the $draft keyword.
func (e *Email) IsDraft() bool {
	return e.Keywords["$draft"]
}

// SenderDisplay returns the first From address formatted for humans, or
// "unknown" when the message has none.
func (e *Email) SenderDisplay() string {
	if len(e.From) == 0 {
		return "unknown"
	}
	return e.From[0].String()
}

// TextContent returns the message's plain-text body: the first text body
// part with a fetched value, falling back to the first body value by part
// id order.
func (e *Email) TextContent() string {
	for _, part := range e.TextBody {
		if part.PartID == nil {
			continue
		}
		if value, ok := e.BodyValues[*part.PartID]; ok {
			return value.Value
		}
	}
	return e.firstBodyValue()
}

// HTMLContent returns the message's HTML body, if fetched.
func (e *Email) HTMLContent() string {
	for _, part := range e.HTMLBody {
		if part.PartID == nil {
			continue
		}
		if value, ok := e.BodyValues[*part.PartID]; ok {
			return value.Value
		}
	}
	return ""
}

func (e *Email) firstBodyValue() string {
	if len(e.BodyValues) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.BodyValues))
	for k := range e.BodyValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return e.BodyValues[keys[0]].Value
}

// Identity is a JMAP sending identity.
type Identity struct {
	ID            string         `json:"id"`
	Name          string         `json:"name,omitempty"`
	Email         string         `json:"email"`
	ReplyTo       []EmailAddress `json:"replyTo,omitempty"`
	BCC           []EmailAddress `json:"bcc,omitempty"`
	TextSignature string         `json:"textSignature,omitempty"`
	HTMLSignature string         `json:"htmlSignature,omitempty"`
	MayDelete     bool           `json:"mayDelete,omitempty"`
}

// Address returns the identity as a sendable From address.
func (i Identity) Address() EmailAddress {
	if i.Name != "" {
		return NamedAddr(i.Name, i.Email)
	}
	return Addr(i.Email)
}

// Masked email states.
const (
	MaskedStateEnabled  = "enabled"
	MaskedStateDisabled = "disabled"
	MaskedStatePending  = "pending"
	MaskedStateDeleted  = "deleted"
)

// MaskedEmail is a Fastmail masked email address.
type MaskedEmail struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	State         string `json:"state"`
	ForDomain     string `json:"forDomain,omitempty"`
	Description   string `json:"description,omitempty"`
	EmailPrefix   string `json:"emailPrefix,omitempty"`
	LastMessageAt string `json:"lastMessageAt,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
	CreatedBy     string `json:"createdBy,omitempty"`
	URL           string `json:"url,omitempty"`
}

// Thread is a JMAP thread: its email ids are sorted oldest first by the
// server.
type Thread struct {
	ID       string   `json:"id"`
	EmailIDs []string `json:"emailIds"`
}
