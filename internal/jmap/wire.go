// Package jmap implements the JMAP wire protocol per RFC 8620: the request
// and response envelopes, the invocation triple, result references, batch
// construction, and positional response resolution. It performs no network
// I/O; transport is the caller's concern.
package jmap

import (
	"encoding/json"
	"fmt"
)

// ErrorMethodName is the sentinel method name the server substitutes for a
// call that failed at the method level (RFC 8620 Section 3.6.2).
const ErrorMethodName = "error"

// Invocation is a single method call or response: on the wire it is the
// three-element array [name, arguments, callId].
type Invocation struct {
	Name   string
	Args   map[string]any
	CallID string
}

// MarshalJSON encodes the invocation as the [name, arguments, callId] triple.
func (inv Invocation) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{inv.Name, inv.Args, inv.CallID})
}

// UnmarshalJSON decodes the [name, arguments, callId] triple.
func (inv *Invocation) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("invocation is not an array: %w", err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("invocation has %d elements, expected 3", len(parts))
	}
	if err := json.Unmarshal(parts[0], &inv.Name); err != nil {
		return fmt.Errorf("invocation method name: %w", err)
	}
	if err := json.Unmarshal(parts[1], &inv.Args); err != nil {
		return fmt.Errorf("invocation arguments: %w", err)
	}
	if err := json.Unmarshal(parts[2], &inv.CallID); err != nil {
		return fmt.Errorf("invocation call id: %w", err)
	}
	return nil
}

// Request is the top-level JMAP request envelope.
type Request struct {
	Using       []string     `json:"using"`
	MethodCalls []Invocation `json:"methodCalls"`
}

// Response is the top-level JMAP response envelope. MethodResponses
// corresponds positionally to the request's MethodCalls.
type Response struct {
	MethodResponses []Invocation `json:"methodResponses"`
	SessionState    string       `json:"sessionState,omitempty"`
}

// ResultReference points a method argument at part of an earlier call's
// response, per RFC 8620 Section 3.7. It is embedded in args under the
// argument name prefixed with "#".
type ResultReference struct {
	ResultOf string `json:"resultOf"` // call id of the referenced call
	Name     string `json:"name"`     // method name the referenced call must have
	Path     string `json:"path"`     // JSON Pointer (with * wildcard) into the result
}

// asResultReference normalizes a "#"-keyed argument value into a
// ResultReference. Values may be the struct itself or the decoded
// map form.
func asResultReference(value any) (*ResultReference, error) {
	switch v := value.(type) {
	case ResultReference:
		return &v, nil
	case *ResultReference:
		return v, nil
	case map[string]any:
		resultOf, ok := v["resultOf"].(string)
		if !ok {
			return nil, NewInvalidResultReferenceError("result reference 'resultOf' must be a string")
		}
		name, ok := v["name"].(string)
		if !ok {
			return nil, NewInvalidResultReferenceError("result reference 'name' must be a string")
		}
		path, ok := v["path"].(string)
		if !ok {
			return nil, NewInvalidResultReferenceError("result reference 'path' must be a string")
		}
		return &ResultReference{ResultOf: resultOf, Name: name, Path: path}, nil
	default:
		return nil, NewInvalidResultReferenceError("result reference must be an object")
	}
}
