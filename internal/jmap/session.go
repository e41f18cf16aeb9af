package jmap

import "encoding/json"

// Capability URNs the client advertises on every request.
const (
	CapCore        = "urn:ietf:params:jmap:core"
	CapMail        = "urn:ietf:params:jmap:mail"
	CapSubmission  = "urn:ietf:params:jmap:submission"
	CapMaskedEmail = "https://www.fastmail.com/dev/maskedemail"
)

// UsingCapabilities returns the capability set sent in every request's
// "using" property.
func UsingCapabilities() []string {
	return []string{CapCore, CapMail, CapSubmission, CapMaskedEmail}
}

// Session represents the JMAP Session object per RFC 8620 Section 2. It is
// fetched once at authentication time and treated as immutable afterwards.
type Session struct {
	Capabilities    map[string]json.RawMessage `json:"capabilities"`
	Accounts        map[string]Account         `json:"accounts"`
	PrimaryAccounts map[string]string          `json:"primaryAccounts"`
	Username        string                     `json:"username"`
	APIUrl          string                     `json:"apiUrl"`
	DownloadUrl     string                     `json:"downloadUrl"`
	UploadUrl       string                     `json:"uploadUrl"`
	EventSourceUrl  string                     `json:"eventSourceUrl"`
	State           string                     `json:"state"`
}

// Account represents a JMAP account
type Account struct {
	Name                string         `json:"name"`
	IsPersonal          bool           `json:"isPersonal"`
	IsReadOnly          bool           `json:"isReadOnly"`
	AccountCapabilities map[string]any `json:"accountCapabilities"`
}

// PrimaryAccountID returns the primary account for the mail capability, or
// "" when the session has none.
func (s *Session) PrimaryAccountID() string {
	return s.PrimaryAccounts[CapMail]
}

// HasCapability reports whether the server advertises urn.
func (s *Session) HasCapability(urn string) bool {
	_, ok := s.Capabilities[urn]
	return ok
}
