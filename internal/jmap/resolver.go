package jmap

import (
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonpointer"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
)

// ResolveInto decodes the response slot at index into v, verifying the slot
// answers expectedMethod. Slots correspond positionally to the request's
// method calls. A slot carrying the "error" sentinel decodes into a
// *apperr.MethodError; a malformed slot yields a responseParse error. One
// slot's failure never affects resolution of another.
func ResolveInto(resp *Response, index int, expectedMethod string, v any) error {
	if resp == nil || index < 0 || index >= len(resp.MethodResponses) {
		return apperr.ResponseParse("Missing response data")
	}
	inv := resp.MethodResponses[index]

	if inv.Name == ErrorMethodName {
		errType, _ := inv.Args["type"].(string)
		description, _ := inv.Args["description"].(string)
		return apperr.NewMethodError(expectedMethod, errType, description)
	}

	if inv.Name != expectedMethod {
		return apperr.ResponseParse(fmt.Sprintf("expected %s at position %d, got %s", expectedMethod, index, inv.Name))
	}

	data, err := json.Marshal(inv.Args)
	if err != nil {
		return apperr.Wrap(apperr.ResponseParse("Missing response data"), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperr.Wrap(apperr.ResponseParse(fmt.Sprintf("malformed %s response", expectedMethod)), err)
	}
	return nil
}

// SetError describes why one item of a */set call failed.
type SetError struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// SetResponse is the generic */set response shape (RFC 8620 Section 5.3).
type SetResponse struct {
	AccountID    string                     `json:"accountId"`
	OldState     string                     `json:"oldState"`
	NewState     string                     `json:"newState"`
	Created      map[string]json.RawMessage `json:"created"`
	Updated      map[string]json.RawMessage `json:"updated"`
	Destroyed    []string                   `json:"destroyed"`
	NotCreated   map[string]SetError        `json:"notCreated"`
	NotUpdated   map[string]SetError        `json:"notUpdated"`
	NotDestroyed map[string]SetError        `json:"notDestroyed"`
}

// CreateFailure returns the server's rejection of creation creationID.
func (r *SetResponse) CreateFailure(creationID string) (SetError, bool) {
	se, ok := r.NotCreated[creationID]
	return se, ok
}

// UpdateFailure returns the server's rejection of the update for id.
func (r *SetResponse) UpdateFailure(id string) (SetError, bool) {
	se, ok := r.NotUpdated[id]
	return se, ok
}

// DestroyFailure returns the server's rejection of the destroy for id.
func (r *SetResponse) DestroyFailure(id string) (SetError, bool) {
	se, ok := r.NotDestroyed[id]
	return se, ok
}

// CreatedID returns the server-assigned id of the record created under
// creationID. found reports whether the record exists in the response at
// all; id is empty when the record exists but carries no id.
func (r *SetResponse) CreatedID(creationID string) (id string, found bool) {
	raw, ok := r.Created[creationID]
	if !ok {
		return "", false
	}
	return probeString(raw, "/id"), true
}

// CreatedRecord decodes the record created under creationID into v.
func (r *SetResponse) CreatedRecord(creationID string, v any) bool {
	raw, ok := r.Created[creationID]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// probeString evaluates a JSON Pointer against a raw fragment and returns
// the string at path, or "" when absent or not a string.
func probeString(raw json.RawMessage, path string) string {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	ptr, err := jsonpointer.Parse(path)
	if err != nil {
		return ""
	}
	value, err := ptr.Eval(doc)
	if err != nil {
		return ""
	}
	s, _ := value.(string)
	return s
}
