package fastmail

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
	"github.com/jmaptools/fastmail-cli/internal/tracing"
	"github.com/jmaptools/fastmail-cli/internal/transport"
)

// expandDownloadURL fills the session's download URL template. The template
// carries {accountId}, {blobId}, {name}, and {type} placeholders per
// RFC 8620 Section 2; name and type are escaped since they come from
// message metadata.
func expandDownloadURL(template, accountID, blobID, name, contentType string) string {
	r := strings.NewReplacer(
		"{accountId}", url.PathEscape(accountID),
		"{blobId}", url.PathEscape(blobID),
		"{name}", url.PathEscape(name),
		"{type}", url.QueryEscape(contentType),
	)
	return r.Replace(template)
}

// DownloadBlob fetches a blob's raw bytes with a generic name and content
// type. Use DownloadBlobNamed when the real filename and type are known.
func (c *Client) DownloadBlob(ctx context.Context, blobID string) ([]byte, error) {
	return c.DownloadBlobNamed(ctx, blobID, "attachment", "application/octet-stream")
}

// DownloadBlobNamed fetches a blob's raw bytes via the session's download
// URL template.
func (c *Client) DownloadBlobNamed(ctx context.Context, blobID, name, contentType string) ([]byte, error) {
	ctx, span := tracing.StartSpan(ctx, "DownloadBlob", tracing.BlobID(blobID))
	defer span.End()

	session, err := c.Session()
	if err != nil {
		return nil, err
	}

	downloadURL := expandDownloadURL(session.DownloadUrl, c.accountID, blobID, name, contentType)
	res, err := c.http.Do(ctx, http.MethodGet, downloadURL, transport.Options{})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	if res.StatusCode == http.StatusNotFound {
		return nil, apperr.Config("blob not found: " + blobID)
	}
	if err := transport.MapStatus(res, "Token expired or invalid"); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return res.Body, nil
}
