// Package apperr defines the error taxonomy shared by the JMAP client, the
// CardDAV client, the CLI, and the MCP tool surface. Callers branch on Kind
// with errors.As; messages are user-facing and printed verbatim.
package apperr

import "fmt"

// Kind identifies the category of a client error.
type Kind string

const (
	// KindNotAuthenticated means no API token is configured at all.
	KindNotAuthenticated Kind = "notAuthenticated"
	// KindInvalidToken means the server rejected the configured token.
	KindInvalidToken Kind = "invalidToken"
	// KindRateLimited means the server returned 429.
	KindRateLimited Kind = "rateLimited"
	// KindServer means the server returned a 5xx or an otherwise unusable reply.
	KindServer Kind = "serverError"
	// KindMailboxNotFound means no mailbox matched a requested name or role.
	KindMailboxNotFound Kind = "mailboxNotFound"
	// KindEmailNotFound means the requested email id does not exist.
	KindEmailNotFound Kind = "emailNotFound"
	// KindIdentityNotFound means the account has no sending identity.
	KindIdentityNotFound Kind = "identityNotFound"
	// KindResponseParse means the response did not match the expected shape.
	KindResponseParse Kind = "responseParse"
	// KindConfig means local configuration is missing or malformed.
	KindConfig Kind = "config"
)

// Error is a categorized client error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotAuthenticated reports that no token is configured.
func NotAuthenticated() *Error {
	return &Error{
		Kind:    KindNotAuthenticated,
		Message: "Authentication required. Run `fastmail-cli auth <token>` first.",
	}
}

// InvalidToken reports that the server rejected the token.
func InvalidToken(detail string) *Error {
	return &Error{
		Kind:    KindInvalidToken,
		Message: fmt.Sprintf("Invalid API token: %s", detail),
	}
}

// RateLimited reports a 429 from the server.
func RateLimited() *Error {
	return &Error{
		Kind:    KindRateLimited,
		Message: "Rate limited. Try again later.",
	}
}

// Server reports a server-side failure.
func Server(detail string) *Error {
	return &Error{
		Kind:    KindServer,
		Message: fmt.Sprintf("Server error: %s", detail),
	}
}

// MailboxNotFound reports that no mailbox matched name.
func MailboxNotFound(name string) *Error {
	return &Error{
		Kind:    KindMailboxNotFound,
		Message: fmt.Sprintf("Mailbox not found: %s", name),
	}
}

// EmailNotFound reports that the email id does not exist.
func EmailNotFound(id string) *Error {
	return &Error{
		Kind:    KindEmailNotFound,
		Message: fmt.Sprintf("Email not found: %s", id),
	}
}

// IdentityNotFound reports that the account has no sending identity.
func IdentityNotFound() *Error {
	return &Error{
		Kind:    KindIdentityNotFound,
		Message: "Identity not found for sending",
	}
}

// ResponseParse reports a response that did not match the expected shape.
func ResponseParse(detail string) *Error {
	return &Error{
		Kind:    KindResponseParse,
		Message: fmt.Sprintf("JMAP error: %s", detail),
	}
}

// Config reports missing or malformed local configuration.
func Config(detail string) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: fmt.Sprintf("Config error: %s", detail),
	}
}

// Wrap attaches an underlying cause to a categorized error.
func Wrap(e *Error, err error) *Error {
	e.Err = err
	return e
}

// MethodError is a method-level error returned in a response slot: the batch
// round trip succeeded but the server answered this call with the "error"
// sentinel. Other slots in the same response are unaffected.
type MethodError struct {
	// Method is the method name the caller expected for the slot.
	Method string
	// Type is the JMAP error type, e.g. "invalidArguments".
	Type string
	// Description is the server's human-readable detail, if any.
	Description string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("JMAP error: %s failed - %s: %s", e.Method, e.Type, e.Description)
}

// NewMethodError builds a MethodError, applying the wire defaults for a
// sentinel with missing fields.
func NewMethodError(method, errType, description string) *MethodError {
	if errType == "" {
		errType = "unknown"
	}
	if description == "" {
		description = "No description"
	}
	return &MethodError{Method: method, Type: errType, Description: description}
}
