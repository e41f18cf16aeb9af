// Package carddav is the contacts client for Fastmail's CardDAV endpoint.
// Unlike the JMAP side there is no batching: each operation is a single
// WebDAV request whose multistatus response is parsed into typed contacts.
package carddav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
	"github.com/jmaptools/fastmail-cli/internal/tracing"
	"github.com/jmaptools/fastmail-cli/internal/transport"
)

// BaseURL is Fastmail's CardDAV endpoint. API tokens do not work here; the
// client authenticates with a username and app password.
const BaseURL = "https://carddav.fastmail.com"

// Contact is one parsed address book entry.
type Contact struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Emails       []ContactEmail `json:"emails"`
	Phones       []ContactPhone `json:"phones"`
	Organization string         `json:"organization,omitempty"`
	Title        string         `json:"title,omitempty"`
	Notes        string         `json:"notes,omitempty"`
}

// ContactEmail is an address with its vCard TYPE label, when present.
type ContactEmail struct {
	Email string `json:"email"`
	Label string `json:"label,omitempty"`
}

// ContactPhone is a number with its vCard TYPE label, when present.
type ContactPhone struct {
	Number string `json:"number"`
	Label  string `json:"label,omitempty"`
}

// AddressBook identifies one collection on the server.
type AddressBook struct {
	Href string `json:"href"`
	Name string `json:"name"`
}

// Client performs CardDAV requests for one user.
type Client struct {
	http     *transport.Client
	logger   *slog.Logger
	baseURL  string
	username string
}

// New returns a client authenticating as username with an app password.
func New(username, appPassword string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:     transport.NewBasic(username, appPassword, logger),
		logger:   logger,
		baseURL:  BaseURL,
		username: username,
	}
}

const propfindBody = `<?xml version="1.0" encoding="utf-8"?>
<d:propfind xmlns:d="DAV:" xmlns:card="urn:ietf:params:xml:ns:carddav">
  <d:prop>
    <d:displayname/>
    <d:resourcetype/>
  </d:prop>
</d:propfind>`

const addressbookQueryBody = `<?xml version="1.0" encoding="utf-8"?>
<card:addressbook-query xmlns:d="DAV:" xmlns:card="urn:ietf:params:xml:ns:carddav">
  <d:prop>
    <d:getetag/>
    <card:address-data/>
  </d:prop>
</card:addressbook-query>`

// dav sends one WebDAV request and returns the body of a 2xx or 207 reply.
func (c *Client) dav(ctx context.Context, method, url, body string) ([]byte, error) {
	res, err := c.http.Do(ctx, method, url, transport.Options{
		Body:        []byte(body),
		ContentType: "application/xml",
		Depth:       "1",
	})
	if err != nil {
		return nil, err
	}
	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return nil, apperr.Config("CardDAV authentication failed: check username and app password")
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, apperr.RateLimited()
	case res.StatusCode >= 200 && res.StatusCode < 300:
		// 207 Multi-Status included.
		return res.Body, nil
	default:
		return nil, apperr.Server(fmt.Sprintf("CardDAV %s failed: %d", method, res.StatusCode))
	}
}

// ListAddressBooks discovers the user's address book collections.
func (c *Client) ListAddressBooks(ctx context.Context) ([]AddressBook, error) {
	ctx, span := tracing.StartSpan(ctx, "ListAddressBooks")
	defer span.End()

	url := fmt.Sprintf("%s/dav/addressbooks/user/%s/", c.baseURL, c.username)
	body, err := c.dav(ctx, "PROPFIND", url, propfindBody)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	ms, err := parseMultistatus(body)
	if err != nil {
		return nil, err
	}

	var books []AddressBook
	for _, resp := range ms.Responses {
		if !resp.isAddressBook() || resp.Href == "" {
			continue
		}
		// The parent collection lists itself; skip it.
		if strings.HasSuffix(resp.Href, "/"+c.username+"/") {
			continue
		}
		name := resp.displayName()
		if name == "" {
			name = lastHrefSegment(resp.Href)
		}
		books = append(books, AddressBook{Href: resp.Href, Name: name})
	}
	c.logger.DebugContext(ctx, "Discovered address books", slog.Int("count", len(books)))
	return books, nil
}

// ListContacts fetches every contact in the address book at href, sorted by
// name.
func (c *Client) ListContacts(ctx context.Context, href string) ([]Contact, error) {
	ctx, span := tracing.StartSpan(ctx, "ListContacts")
	defer span.End()

	body, err := c.dav(ctx, "REPORT", c.baseURL+href, addressbookQueryBody)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	ms, err := parseMultistatus(body)
	if err != nil {
		return nil, err
	}

	var contacts []Contact
	for _, resp := range ms.Responses {
		data := resp.addressData()
		if data == "" {
			continue
		}
		for _, contact := range parseVCards(data) {
			contacts = append(contacts, contact)
		}
	}

	sort.Slice(contacts, func(i, j int) bool {
		return strings.ToLower(contacts[i].Name) < strings.ToLower(contacts[j].Name)
	})
	return contacts, nil
}

// SearchContacts fans out over every address book sequentially and keeps
// contacts whose name, any email, or organization contains query,
// case-insensitively.
func (c *Client) SearchContacts(ctx context.Context, query string) ([]Contact, error) {
	ctx, span := tracing.StartSpan(ctx, "SearchContacts")
	defer span.End()

	books, err := c.ListAddressBooks(ctx)
	if err != nil {
		return nil, err
	}

	var all []Contact
	for _, book := range books {
		contacts, err := c.ListContacts(ctx, book.Href)
		if err != nil {
			tracing.RecordError(span, err)
			return nil, err
		}
		all = append(all, contacts...)
	}

	q := strings.ToLower(query)
	var matched []Contact
	for _, contact := range all {
		if contact.matches(q) {
			matched = append(matched, contact)
		}
	}
	return matched, nil
}

func (c Contact) matches(lowerQuery string) bool {
	if strings.Contains(strings.ToLower(c.Name), lowerQuery) {
		return true
	}
	for _, e := range c.Emails {
		if strings.Contains(strings.ToLower(e.Email), lowerQuery) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(c.Organization), lowerQuery)
}

// lastHrefSegment returns the last non-empty path segment of href.
func lastHrefSegment(href string) string {
	parts := strings.Split(href, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return "Unknown"
}
