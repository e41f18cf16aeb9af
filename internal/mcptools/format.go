package mcptools

import (
	"fmt"
	"strings"

	"github.com/jmaptools/fastmail-cli/internal/attachment"
	"github.com/jmaptools/fastmail-cli/internal/carddav"
	"github.com/jmaptools/fastmail-cli/internal/fastmail"
)

// formatAddressList renders addresses comma-separated, or "(none)".
func formatAddressList(addrs []fastmail.EmailAddress) string {
	if len(addrs) == 0 {
		return "(none)"
	}
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

func formatSubject(subject string) string {
	if subject == "" {
		return "(no subject)"
	}
	return subject
}

func formatMailbox(m *fastmail.Mailbox) string {
	role := ""
	if m.Role != nil {
		role = fmt.Sprintf(" [%s]", *m.Role)
	}
	unread := ""
	if m.UnreadEmails > 0 {
		unread = fmt.Sprintf(" (%d unread)", m.UnreadEmails)
	}
	return fmt.Sprintf("%s%s%s - %d emails (id: %s)", m.Name, role, unread, m.TotalEmails, m.ID)
}

func formatEmailSummary(e *fastmail.Email) string {
	date := e.ReceivedAt
	if date == "" {
		date = "unknown"
	}
	flags := ""
	if e.IsUnread() {
		flags += "[UNREAD]"
	}
	if e.HasAttachment {
		flags += "[attachment]"
	}
	return fmt.Sprintf("%s\nID: %s\nFrom: %s\nSubject: %s\nDate: %s\nPreview: %s",
		flags, e.ID, formatAddressList(e.From), formatSubject(e.Subject), date, e.Preview)
}

func formatEmailFull(e *fastmail.Email) string {
	date := e.ReceivedAt
	if date == "" {
		date = "unknown"
	}
	threadID := e.ThreadID
	if threadID == "" {
		threadID = "(none)"
	}
	return fmt.Sprintf(
		"ID: %s\nThread ID: %s\nFrom: %s\nTo: %s\nCC: %s\nSubject: %s\nDate: %s\nHas Attachment: %t\n\n--- Body ---\n%s",
		e.ID, threadID,
		formatAddressList(e.From), formatAddressList(e.To), formatAddressList(e.CC),
		formatSubject(e.Subject), date, e.HasAttachment, e.TextContent(),
	)
}

func formatMaskedEmail(m *fastmail.MaskedEmail) string {
	var indicator string
	switch m.State {
	case fastmail.MaskedStateEnabled:
		indicator = "[ENABLED]"
	case fastmail.MaskedStateDisabled:
		indicator = "[DISABLED]"
	case fastmail.MaskedStatePending:
		indicator = "[PENDING]"
	case fastmail.MaskedStateDeleted:
		indicator = "[DELETED]"
	default:
		indicator = "[?]"
	}

	lines := []string{
		fmt.Sprintf("%s %s", indicator, m.Email),
		fmt.Sprintf("ID: %s", m.ID),
	}
	if m.ForDomain != "" {
		lines = append(lines, fmt.Sprintf("For: %s", m.ForDomain))
	}
	if m.Description != "" {
		lines = append(lines, fmt.Sprintf("Description: %s", m.Description))
	}
	if m.LastMessageAt != "" {
		lines = append(lines, fmt.Sprintf("Last message: %s", m.LastMessageAt))
	}
	if m.CreatedAt != "" {
		lines = append(lines, fmt.Sprintf("Created: %s", m.CreatedAt))
	}
	return strings.Join(lines, "\n")
}

func formatContact(c *carddav.Contact) string {
	lines := []string{fmt.Sprintf("**%s**", c.Name)}

	if len(c.Emails) > 0 {
		entries := make([]string, len(c.Emails))
		for i, e := range c.Emails {
			entries[i] = "  " + e.Email + contactLabel(e.Label)
		}
		lines = append(lines, "Emails:\n"+strings.Join(entries, "\n"))
	}
	if len(c.Phones) > 0 {
		entries := make([]string, len(c.Phones))
		for i, p := range c.Phones {
			entries[i] = "  " + p.Number + contactLabel(p.Label)
		}
		lines = append(lines, "Phones:\n"+strings.Join(entries, "\n"))
	}
	if org := strings.TrimSpace(strings.TrimSuffix(c.Organization, ";")); org != "" {
		lines = append(lines, "Organization: "+org)
	}
	if c.Title != "" {
		lines = append(lines, "Title: "+c.Title)
	}
	return strings.Join(lines, "\n")
}

func contactLabel(label string) string {
	label = strings.ToLower(strings.TrimSuffix(label, ";"))
	if label == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", label)
}

func formatAttachment(index int, a *fastmail.EmailBodyPart) string {
	name := "(unnamed)"
	if a.Name != nil && *a.Name != "" {
		name = *a.Name
	}
	contentType := "unknown"
	if a.Type != nil && *a.Type != "" {
		contentType = *a.Type
	}
	blobID := "none"
	if a.BlobID != nil {
		blobID = *a.BlobID
	}
	return fmt.Sprintf("%d. %s\n   Type: %s\n   Size: %s\n   Blob ID: %s",
		index, name, contentType, attachment.FormatSize(a.Size), blobID)
}
