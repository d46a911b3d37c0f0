// Package mutation holds the contracts shared by every screen that changes
// records: the mutation call, its result, notifications and list refresh.
package mutation

import (
	"context"
	"encoding/json"
)

// Payload is the body of a create or update call, keyed by JSON field name
type Payload map[string]any

// Result is what a mutation call reports back.
// A failed mutation carries Error=true and, usually, a Message.
type Result struct {
	Error   bool            `json:"error"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Failed builds an error result
func Failed(message string) *Result {
	return &Result{Error: true, Message: message}
}

// Mutator creates and updates the records of one entity
type Mutator interface {
	Create(ctx context.Context, payload Payload) (*Result, error)
	Update(ctx context.Context, id string, payload Payload) (*Result, error)
}

// Notifier shows short success and error messages to the user
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Refetcher reloads a list after a successful mutation
type Refetcher interface {
	Refetch(ctx context.Context) error
}

// Resolve turns a transport error into an error result so callers handle one shape
func Resolve(res *Result, err error) *Result {
	if err != nil {
		return Failed(err.Error())
	}
	if res == nil {
		return &Result{}
	}
	return res
}
