package fastmail

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
	"github.com/jmaptools/fastmail-cli/internal/jmap"
	"github.com/jmaptools/fastmail-cli/internal/tracing"
	"github.com/jmaptools/fastmail-cli/internal/transport"
)

// SessionURL is the well-known Fastmail session endpoint.
const SessionURL = "https://api.fastmail.com/jmap/session"

// Client talks JMAP to Fastmail. Construct with New, call Authenticate
// once, then use the resource methods. After Authenticate the client is
// safe for concurrent readers; the session is never mutated again.
type Client struct {
	http       *transport.Client
	logger     *slog.Logger
	sessionURL string
	session    *jmap.Session
	accountID  string
}

// New returns an unauthenticated client for the given API token.
func New(token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:       transport.NewBearer(token, logger),
		logger:     logger,
		sessionURL: SessionURL,
	}
}

// Authenticate fetches the session object and resolves the primary mail
// account. A 401 here means the token itself is bad.
func (c *Client) Authenticate(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "Authenticate")
	defer span.End()

	res, err := c.http.Do(ctx, http.MethodGet, c.sessionURL, transport.Options{})
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}
	if err := transport.MapStatus(res, "Authentication failed"); err != nil {
		tracing.RecordError(span, err)
		return err
	}

	var session jmap.Session
	if err := json.Unmarshal(res.Body, &session); err != nil {
		return apperr.Wrap(apperr.ResponseParse("malformed session object"), err)
	}
	accountID := session.PrimaryAccountID()
	if accountID == "" {
		return apperr.ResponseParse("session has no primary mail account")
	}

	c.session = &session
	c.accountID = accountID
	span.SetAttributes(tracing.AccountID(accountID))
	c.logger.InfoContext(ctx, "Authenticated",
		slog.String("username", session.Username),
		slog.String("account_id", accountID),
	)
	return nil
}

// Session returns the session fetched by Authenticate.
func (c *Client) Session() (*jmap.Session, error) {
	if c.session == nil {
		return nil, apperr.NotAuthenticated()
	}
	return c.session, nil
}

// Username returns the authenticated account's username.
func (c *Client) Username() (string, error) {
	session, err := c.Session()
	if err != nil {
		return "", err
	}
	return session.Username, nil
}

// AccountID returns the primary mail account id.
func (c *Client) AccountID() (string, error) {
	if c.session == nil {
		return "", apperr.NotAuthenticated()
	}
	return c.accountID, nil
}

// roundTrip sends one batch to the API endpoint and parses the response
// envelope. Calls are answered positionally; resolution of individual
// slots is the caller's job.
func (c *Client) roundTrip(ctx context.Context, batch *jmap.Batch) (*jmap.Response, error) {
	if c.session == nil {
		return nil, apperr.NotAuthenticated()
	}

	req, err := batch.Build()
	if err != nil {
		return nil, err
	}

	methods := make([]string, len(req.MethodCalls))
	for i, call := range req.MethodCalls {
		methods[i] = call.Name
	}
	ctx, span := tracing.StartRequestSpan(ctx, methods)
	defer span.End()
	span.SetAttributes(tracing.AccountID(c.accountID))

	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.ResponseParse("cannot encode request"), err)
	}

	respBody, err := c.http.PostJSON(ctx, c.session.APIUrl, body)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	var resp jmap.Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		parseErr := apperr.Wrap(apperr.ResponseParse("malformed response envelope"), err)
		tracing.RecordError(span, parseErr)
		return nil, parseErr
	}
	return &resp, nil
}
