package jmap

import (
	"fmt"
	"strings"
)

// BatchErrorType classifies a batch construction failure.
type BatchErrorType string

const (
	// ErrorDuplicateCallID is returned when two calls share a call id.
	ErrorDuplicateCallID BatchErrorType = "duplicateCallId"
	// ErrorInvalidResultReference is returned when a result reference is
	// malformed or cannot point at an earlier call.
	ErrorInvalidResultReference BatchErrorType = "invalidResultReference"
	// ErrorInvalidArguments is returned when args contain conflicting keys.
	ErrorInvalidArguments BatchErrorType = "invalidArguments"
)

// BatchError represents an error while assembling a batch.
type BatchError struct {
	Type        BatchErrorType
	Description string
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Description)
}

// NewDuplicateCallIDError creates a duplicateCallId error
func NewDuplicateCallIDError(description string) *BatchError {
	return &BatchError{
		Type:        ErrorDuplicateCallID,
		Description: description,
	}
}

// NewInvalidResultReferenceError creates an invalidResultReference error
func NewInvalidResultReferenceError(description string) *BatchError {
	return &BatchError{
		Type:        ErrorInvalidResultReference,
		Description: description,
	}
}

// NewInvalidArgumentsError creates an invalidArguments error
func NewInvalidArgumentsError(description string) *BatchError {
	return &BatchError{
		Type:        ErrorInvalidArguments,
		Description: description,
	}
}

// Batch accumulates method calls for a single request. Calls are sent in the
// order added; the server answers them in the same order, so a response slot
// is addressed by the position of its call.
type Batch struct {
	calls []Invocation
	ids   map[string]int
	err   error
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{ids: make(map[string]int)}
}

// Add appends a method call. Call ids must be non-empty and unique within
// the batch; a violation is reported here and again by Build, so fixed
// batches may defer checking to the Build call.
func (b *Batch) Add(name string, args map[string]any, callID string) error {
	var err error
	switch {
	case name == "":
		err = NewInvalidArgumentsError("method name must not be empty")
	case callID == "":
		err = NewInvalidArgumentsError("call id must not be empty")
	default:
		if _, exists := b.ids[callID]; exists {
			err = NewDuplicateCallIDError("call id '" + callID + "' already used in this batch")
		}
	}
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return err
	}

	b.ids[callID] = len(b.calls)
	b.calls = append(b.calls, Invocation{Name: name, Args: args, CallID: callID})
	return nil
}

// Len returns the number of calls added so far.
func (b *Batch) Len() int {
	return len(b.calls)
}

// Validate checks every result reference in the batch: each "#"-prefixed
// argument must not conflict with its plain form, must carry a well-formed
// reference, and must point at an EARLIER call whose method name matches.
// The reference itself is resolved server-side; only orderability is
// checked here.
func (b *Batch) Validate() error {
	for i, call := range b.calls {
		for key, value := range call.Args {
			if !strings.HasPrefix(key, "#") {
				continue
			}
			baseKey := strings.TrimPrefix(key, "#")
			if _, exists := call.Args[baseKey]; exists {
				return NewInvalidArgumentsError("conflicting keys: both '" + baseKey + "' and '#" + baseKey + "' are present")
			}

			ref, err := asResultReference(value)
			if err != nil {
				return err
			}

			depIdx, exists := b.ids[ref.ResultOf]
			if !exists {
				return NewInvalidResultReferenceError("no call found with id '" + ref.ResultOf + "'")
			}
			if depIdx >= i {
				return NewInvalidResultReferenceError(fmt.Sprintf("forward reference: call %d references call %d", i, depIdx))
			}
			if b.calls[depIdx].Name != ref.Name {
				return NewInvalidResultReferenceError("call id '" + ref.ResultOf + "' has method name '" + b.calls[depIdx].Name + "', expected '" + ref.Name + "'")
			}
		}
	}
	return nil
}

// Build validates the batch and returns the request envelope. It does not
// consume the batch: calling it twice yields identical requests.
func (b *Batch) Build() (Request, error) {
	if b.err != nil {
		return Request{}, b.err
	}
	if err := b.Validate(); err != nil {
		return Request{}, err
	}

	calls := make([]Invocation, len(b.calls))
	copy(calls, b.calls)
	return Request{
		Using:       UsingCapabilities(),
		MethodCalls: calls,
	}, nil
}
