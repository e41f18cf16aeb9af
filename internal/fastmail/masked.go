package fastmail

import (
	"context"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
	"github.com/jmaptools/fastmail-cli/internal/jmap"
	"github.com/jmaptools/fastmail-cli/internal/tracing"
)

const maskedCreationID = "new"

// ListMaskedEmails returns every masked email address on the account,
// including disabled and deleted ones.
func (c *Client) ListMaskedEmails(ctx context.Context) ([]MaskedEmail, error) {
	ctx, span := tracing.StartSpan(ctx, "ListMaskedEmails")
	defer span.End()

	b := jmap.NewBatch()
	b.Add("MaskedEmail/get", map[string]any{
		"accountId": c.accountID,
		"ids":       nil,
	}, "me0")

	resp, err := c.roundTrip(ctx, b)
	if err != nil {
		return nil, err
	}

	var out jmap.GetResponse[MaskedEmail]
	if err := jmap.ResolveInto(resp, 0, "MaskedEmail/get", &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

// CreateMaskedEmail creates a new masked address in the enabled state.
// forDomain, description, and prefix are optional; with an empty prefix the
// server picks a random one.
func (c *Client) CreateMaskedEmail(ctx context.Context, forDomain, description, prefix string) (*MaskedEmail, error) {
	ctx, span := tracing.StartSpan(ctx, "CreateMaskedEmail")
	defer span.End()

	create := map[string]any{
		"state": MaskedStateEnabled,
	}
	if forDomain != "" {
		create["forDomain"] = forDomain
	}
	if description != "" {
		create["description"] = description
	}
	if prefix != "" {
		create["emailPrefix"] = prefix
	}

	b := jmap.NewBatch()
	b.Add("MaskedEmail/set", map[string]any{
		"accountId": c.accountID,
		"create":    map[string]any{maskedCreationID: create},
	}, "me0")

	resp, err := c.roundTrip(ctx, b)
	if err != nil {
		return nil, err
	}

	var set jmap.SetResponse
	if err := jmap.ResolveInto(resp, 0, "MaskedEmail/set", &set); err != nil {
		return nil, err
	}
	if se, ok := set.CreateFailure(maskedCreationID); ok {
		if se.Description == "" {
			se.Description = "Failed to create masked email"
		}
		return nil, newSetError("MaskedEmail/set", se)
	}

	var masked MaskedEmail
	if !set.CreatedRecord(maskedCreationID, &masked) {
		return nil, apperr.NewMethodError("MaskedEmail/set", "unknown", "No masked email returned")
	}
	return &masked, nil
}

// UpdateMaskedEmail patches a masked address. Empty fields are left
// untouched; state must be one of the MaskedState constants when set.
func (c *Client) UpdateMaskedEmail(ctx context.Context, id, state, forDomain, description string) error {
	ctx, span := tracing.StartSpan(ctx, "UpdateMaskedEmail")
	defer span.End()

	patch := map[string]any{}
	if state != "" {
		patch["state"] = state
	}
	if forDomain != "" {
		patch["forDomain"] = forDomain
	}
	if description != "" {
		patch["description"] = description
	}

	b := jmap.NewBatch()
	b.Add("MaskedEmail/set", map[string]any{
		"accountId": c.accountID,
		"update":    map[string]any{id: patch},
	}, "me0")

	resp, err := c.roundTrip(ctx, b)
	if err != nil {
		return err
	}
	return resolveUpdate(resp, 0, "MaskedEmail/set", id, "Failed to update masked email")
}

// EnableMaskedEmail re-enables a disabled masked address.
func (c *Client) EnableMaskedEmail(ctx context.Context, id string) error {
	return c.UpdateMaskedEmail(ctx, id, MaskedStateEnabled, "", "")
}

// DisableMaskedEmail stops a masked address from receiving mail without
// destroying it.
func (c *Client) DisableMaskedEmail(ctx context.Context, id string) error {
	return c.UpdateMaskedEmail(ctx, id, MaskedStateDisabled, "", "")
}

// DeleteMaskedEmail marks a masked address deleted. Fastmail models deletion
// as a state change, so the id stays resolvable but the address is gone.
func (c *Client) DeleteMaskedEmail(ctx context.Context, id string) error {
	return c.UpdateMaskedEmail(ctx, id, MaskedStateDeleted, "", "")
}
