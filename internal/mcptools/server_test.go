package mcptools

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
	"github.com/jmaptools/fastmail-cli/internal/carddav"
	"github.com/jmaptools/fastmail-cli/internal/fastmail"
)

func strPtr(s string) *string { return &s }

// fakeMailer serves canned data and records every mutating call so tests
// can assert that previews perform none.
type fakeMailer struct {
	mailboxes []fastmail.Mailbox
	emails    map[string]*fastmail.Email
	thread    []fastmail.Email
	masked    []fastmail.MaskedEmail
	blobs     map[string][]byte

	searchedFilters []fastmail.SearchFilter
	mutations       []string
	failMailbox     bool
}

func (f *fakeMailer) ListMailboxes(ctx context.Context) ([]fastmail.Mailbox, error) {
	return f.mailboxes, nil
}

func (f *fakeMailer) FindMailbox(ctx context.Context, name string) (*fastmail.Mailbox, error) {
	if f.failMailbox {
		return nil, apperr.MailboxNotFound(name)
	}
	for i := range f.mailboxes {
		if strings.EqualFold(f.mailboxes[i].Name, name) {
			return &f.mailboxes[i], nil
		}
	}
	return nil, apperr.MailboxNotFound(name)
}

func (f *fakeMailer) ListEmails(ctx context.Context, mailboxID string, limit int) ([]fastmail.Email, error) {
	var out []fastmail.Email
	for _, e := range f.emails {
		if e.MailboxIDs[mailboxID] {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeMailer) GetEmail(ctx context.Context, id string) (*fastmail.Email, error) {
	if e, ok := f.emails[id]; ok {
		return e, nil
	}
	return nil, apperr.EmailNotFound(id)
}

func (f *fakeMailer) SearchEmails(ctx context.Context, filter fastmail.SearchFilter, limit int) ([]fastmail.Email, error) {
	f.searchedFilters = append(f.searchedFilters, filter)
	return nil, nil
}

func (f *fakeMailer) GetThread(ctx context.Context, emailID string) ([]fastmail.Email, error) {
	return f.thread, nil
}

func (f *fakeMailer) MoveEmail(ctx context.Context, emailID, mailboxID string) error {
	f.mutations = append(f.mutations, "move "+emailID+" "+mailboxID)
	return nil
}

func (f *fakeMailer) MarkRead(ctx context.Context, emailID string, read bool) error {
	f.mutations = append(f.mutations, "markread "+emailID)
	return nil
}

func (f *fakeMailer) MarkSpam(ctx context.Context, emailID string) error {
	f.mutations = append(f.mutations, "spam "+emailID)
	return nil
}

func (f *fakeMailer) SendEmail(ctx context.Context, to, cc, bcc []fastmail.EmailAddress, subject, body, inReplyTo string) (string, error) {
	f.mutations = append(f.mutations, "send "+subject)
	return "sent1", nil
}

func (f *fakeMailer) ReplyEmail(ctx context.Context, emailID, body string, all bool, cc, bcc []fastmail.EmailAddress) (string, error) {
	f.mutations = append(f.mutations, "reply "+emailID)
	return "sent2", nil
}

func (f *fakeMailer) ForwardEmail(ctx context.Context, emailID string, to []fastmail.EmailAddress, body string, cc, bcc []fastmail.EmailAddress) (string, error) {
	f.mutations = append(f.mutations, "forward "+emailID)
	return "sent3", nil
}

func (f *fakeMailer) ListMaskedEmails(ctx context.Context) ([]fastmail.MaskedEmail, error) {
	return f.masked, nil
}

func (f *fakeMailer) CreateMaskedEmail(ctx context.Context, forDomain, description, prefix string) (*fastmail.MaskedEmail, error) {
	f.mutations = append(f.mutations, "masked-create "+forDomain)
	return &fastmail.MaskedEmail{ID: "mk1", Email: "x.y@fastmail.com", State: fastmail.MaskedStatePending, ForDomain: forDomain}, nil
}

func (f *fakeMailer) UpdateMaskedEmail(ctx context.Context, id, state, forDomain, description string) error {
	f.mutations = append(f.mutations, "masked-update "+id+" "+state)
	return nil
}

func (f *fakeMailer) DownloadBlob(ctx context.Context, blobID string) ([]byte, error) {
	if data, ok := f.blobs[blobID]; ok {
		return data, nil
	}
	return nil, apperr.Config("blob not found: " + blobID)
}

func newFakeMailer() *fakeMailer {
	inboxRole := "inbox"
	return &fakeMailer{
		mailboxes: []fastmail.Mailbox{
			{ID: "mb-work", Name: "Work", TotalEmails: 3},
			{ID: "mb-inbox", Name: "Inbox", Role: &inboxRole, TotalEmails: 10, UnreadEmails: 2},
		},
		emails: map[string]*fastmail.Email{
			"e1": {
				ID:         "e1",
				ThreadID:   "t1",
				MailboxIDs: map[string]bool{"mb-inbox": true},
				Subject:    "Budget review",
				From:       []fastmail.EmailAddress{fastmail.NamedAddr("Ana", "ana@x.com")},
				To:         []fastmail.EmailAddress{fastmail.Addr("me@x.com")},
				ReceivedAt: "2024-03-02T10:00:00Z",
				MessageID:  []string{"<orig@x.com>"},
				TextBody:   []fastmail.EmailBodyPart{{PartID: strPtr("p1")}},
				BodyValues: map[string]fastmail.EmailBodyValue{"p1": {Value: "numbers attached"}},
				Attachments: []fastmail.EmailBodyPart{
					{BlobID: strPtr("b1"), Name: strPtr("notes.txt"), Type: strPtr("text/plain"), Size: 12},
					{Name: strPtr("inline-no-blob")},
				},
			},
		},
		blobs: map[string][]byte{"b1": []byte("hello notes")},
	}
}

func newTestServer(t *testing.T, mail Mailer, directory DirectoryFunc) *Server {
	t.Helper()
	if directory == nil {
		directory = func(ctx context.Context) (ContactDirectory, error) {
			return nil, apperr.Config("Username not configured. Set FASTMAIL_USERNAME env var.")
		}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(mail, directory, "test", logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func callReq(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestHandleListMailboxes_RoleMailboxesFirst(t *testing.T) {
	fake := newFakeMailer()
	s := newTestServer(t, fake, nil)

	res, err := s.handleListMailboxes(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("handleListMailboxes: %v", err)
	}

	text := resultText(t, res)
	lines := strings.Split(text, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), text)
	}
	if lines[0] != "Inbox [inbox] (2 unread) - 10 emails (id: mb-inbox)" {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Work") {
		t.Errorf("second line = %q, want plain mailbox after role mailboxes", lines[1])
	}
}

func TestHandleListEmails_UnknownMailbox_ErrorResult(t *testing.T) {
	s := newTestServer(t, newFakeMailer(), nil)

	res, err := s.handleListEmails(context.Background(), callReq(map[string]any{"mailbox": "Nope"}))
	if err != nil {
		t.Fatalf("handleListEmails: %v", err)
	}
	if !res.IsError {
		t.Fatal("want error result for unknown mailbox")
	}
	if text := resultText(t, res); !strings.HasPrefix(text, "Mailbox not found: Nope") {
		t.Errorf("text = %q", text)
	}
}

func TestHandleGetEmail_SingleMessage_NoThreadFrame(t *testing.T) {
	fake := newFakeMailer()
	fake.thread = []fastmail.Email{*fake.emails["e1"]}
	s := newTestServer(t, fake, nil)

	res, err := s.handleGetEmail(context.Background(), callReq(map[string]any{"email_id": "e1"}))
	if err != nil {
		t.Fatalf("handleGetEmail: %v", err)
	}

	text := resultText(t, res)
	if strings.Contains(text, "THREAD") {
		t.Errorf("single message should not render thread framing:\n%s", text)
	}
	if !strings.Contains(text, "Subject: Budget review") {
		t.Errorf("missing subject:\n%s", text)
	}
}

func TestHandleGetEmail_Thread_MarksSelectedAndSortsOldestFirst(t *testing.T) {
	fake := newFakeMailer()
	fake.thread = []fastmail.Email{
		{ID: "e2", Subject: "Re: Budget review", ReceivedAt: "2024-03-03T10:00:00Z"},
		{ID: "e1", Subject: "Budget review", ReceivedAt: "2024-03-02T10:00:00Z"},
	}
	s := newTestServer(t, fake, nil)

	res, err := s.handleGetEmail(context.Background(), callReq(map[string]any{"email_id": "e1"}))
	if err != nil {
		t.Fatalf("handleGetEmail: %v", err)
	}

	text := resultText(t, res)
	if !strings.HasPrefix(text, "Thread contains 2 emails:") {
		t.Errorf("header missing:\n%s", text)
	}
	if !strings.Contains(text, ">>> SELECTED EMAIL <<<\n[1/2]") {
		t.Errorf("selected email should be first after date sort:\n%s", text)
	}
	if !strings.Contains(text, "========== THREAD ==========") {
		t.Errorf("missing thread separator:\n%s", text)
	}
}

func TestHandleSearchEmails_UnknownMailbox_DegradesToUnscoped(t *testing.T) {
	fake := newFakeMailer()
	s := newTestServer(t, fake, nil)

	res, err := s.handleSearchEmails(context.Background(), callReq(map[string]any{
		"query":   "invoice",
		"mailbox": "NoSuchFolder",
		"unread":  true,
	}))
	if err != nil {
		t.Fatalf("handleSearchEmails: %v", err)
	}
	if resultText(t, res) != "No emails found." {
		t.Errorf("text = %q", resultText(t, res))
	}

	if len(fake.searchedFilters) != 1 {
		t.Fatalf("got %d searches, want 1", len(fake.searchedFilters))
	}
	filter := fake.searchedFilters[0]
	if filter.MailboxID != "" {
		t.Errorf("MailboxID = %q, want unscoped", filter.MailboxID)
	}
	if filter.Text != "invoice" || !filter.Unread {
		t.Errorf("filter = %+v", filter)
	}
}

func TestHandleMoveEmail_ReportsSubjectAndTarget(t *testing.T) {
	fake := newFakeMailer()
	s := newTestServer(t, fake, nil)

	res, err := s.handleMoveEmail(context.Background(), callReq(map[string]any{
		"email_id":       "e1",
		"target_mailbox": "Work",
	}))
	if err != nil {
		t.Fatalf("handleMoveEmail: %v", err)
	}

	if text := resultText(t, res); text != `Moved email "Budget review" to Work` {
		t.Errorf("text = %q", text)
	}
	if len(fake.mutations) != 1 || fake.mutations[0] != "move e1 mb-work" {
		t.Errorf("mutations = %v", fake.mutations)
	}
}

func TestHandleListAttachments_SkipsPartsWithoutBlob(t *testing.T) {
	s := newTestServer(t, newFakeMailer(), nil)

	res, err := s.handleListAttachments(context.Background(), callReq(map[string]any{"email_id": "e1"}))
	if err != nil {
		t.Fatalf("handleListAttachments: %v", err)
	}

	text := resultText(t, res)
	if !strings.HasPrefix(text, "Attachments (1):") {
		t.Errorf("header = %q", text)
	}
	if !strings.Contains(text, "1. notes.txt") || !strings.Contains(text, "Blob ID: b1") {
		t.Errorf("entry missing:\n%s", text)
	}
	if strings.Contains(text, "inline-no-blob") {
		t.Errorf("blobless part should be skipped:\n%s", text)
	}
}

func TestHandleGetAttachment_TextExtracted(t *testing.T) {
	s := newTestServer(t, newFakeMailer(), nil)

	res, err := s.handleGetAttachment(context.Background(), callReq(map[string]any{
		"email_id": "e1",
		"blob_id":  "b1",
	}))
	if err != nil {
		t.Fatalf("handleGetAttachment: %v", err)
	}

	want := "Extracted text from notes.txt:\n\nhello notes"
	if text := resultText(t, res); text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestHandleGetAttachment_UnknownBlob_ErrorResult(t *testing.T) {
	s := newTestServer(t, newFakeMailer(), nil)

	res, err := s.handleGetAttachment(context.Background(), callReq(map[string]any{
		"email_id": "e1",
		"blob_id":  "missing",
	}))
	if err != nil {
		t.Fatalf("handleGetAttachment: %v", err)
	}
	if !res.IsError {
		t.Fatal("want error result")
	}
	if text := resultText(t, res); text != "Attachment not found: missing" {
		t.Errorf("text = %q", text)
	}
}

func TestHandleListMaskedEmails_EnabledFirst(t *testing.T) {
	fake := newFakeMailer()
	fake.masked = []fastmail.MaskedEmail{
		{ID: "m1", Email: "a.disabled@fastmail.com", State: fastmail.MaskedStateDisabled},
		{ID: "m2", Email: "z.enabled@fastmail.com", State: fastmail.MaskedStateEnabled},
	}
	s := newTestServer(t, fake, nil)

	res, err := s.handleListMaskedEmails(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("handleListMaskedEmails: %v", err)
	}

	text := resultText(t, res)
	if !strings.HasPrefix(text, "Masked Emails (2):") {
		t.Errorf("header = %q", text)
	}
	enabled := strings.Index(text, "[ENABLED] z.enabled@fastmail.com")
	disabled := strings.Index(text, "[DISABLED] a.disabled@fastmail.com")
	if enabled == -1 || disabled == -1 || enabled > disabled {
		t.Errorf("enabled should list first:\n%s", text)
	}
}

func TestHandleSearchContacts_MissingCredentials_ErrorResult(t *testing.T) {
	s := newTestServer(t, newFakeMailer(), nil)

	res, err := s.handleSearchContacts(context.Background(), callReq(map[string]any{"query": "ana"}))
	if err != nil {
		t.Fatalf("handleSearchContacts: %v", err)
	}
	if !res.IsError {
		t.Fatal("want error result when credentials are missing")
	}
	if text := resultText(t, res); !strings.Contains(text, "FASTMAIL_USERNAME") {
		t.Errorf("text = %q", text)
	}
}

type stubDirectory struct {
	contacts []carddav.Contact
}

func (d stubDirectory) SearchContacts(ctx context.Context, query string) ([]carddav.Contact, error) {
	return d.contacts, nil
}

func TestHandleSearchContacts_FormatsMatches(t *testing.T) {
	dir := stubDirectory{contacts: []carddav.Contact{{
		ID:     "c1",
		Name:   "Ana Garcia",
		Emails: []carddav.ContactEmail{{Email: "ana@x.com", Label: "work"}},
	}}}
	s := newTestServer(t, newFakeMailer(), func(ctx context.Context) (ContactDirectory, error) {
		return dir, nil
	})

	res, err := s.handleSearchContacts(context.Background(), callReq(map[string]any{"query": "ana"}))
	if err != nil {
		t.Fatalf("handleSearchContacts: %v", err)
	}

	text := resultText(t, res)
	if !strings.HasPrefix(text, "Found 1 contact(s):") {
		t.Errorf("header = %q", text)
	}
	if !strings.Contains(text, "**Ana Garcia**") || !strings.Contains(text, "  ana@x.com (work)") {
		t.Errorf("contact body:\n%s", text)
	}
}
