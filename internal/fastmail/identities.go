package fastmail

import (
	"context"

	"github.com/jmaptools/fastmail-cli/internal/jmap"
	"github.com/jmaptools/fastmail-cli/internal/tracing"
)

// ListIdentities returns the account's sending identities.
func (c *Client) ListIdentities(ctx context.Context) ([]Identity, error) {
	ctx, span := tracing.StartSpan(ctx, "ListIdentities")
	defer span.End()

	b := jmap.NewBatch()
	b.Add("Identity/get", map[string]any{
		"accountId": c.accountID,
	}, "i0")

	resp, err := c.roundTrip(ctx, b)
	if err != nil {
		return nil, err
	}

	var out jmap.GetResponse[Identity]
	if err := jmap.ResolveInto(resp, 0, "Identity/get", &out); err != nil {
		return nil, err
	}
	return out.List, nil
}
