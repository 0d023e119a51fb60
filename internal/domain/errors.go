package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound signals a lookup miss for an entity that callers expected
// to exist. Repositories wrap it with the entity kind and id.
var ErrNotFound = errors.New("not found")

// ValidationError flags malformed or insufficient input. Surfaced to the
// caller synchronously, never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidStateError flags a transition attempted from a terminal state or
// a lifecycle mutation that violates an invariant.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return "invalid state: " + e.Reason
}

// NewInvalidStateError builds an InvalidStateError with a formatted reason.
func NewInvalidStateError(format string, args ...any) *InvalidStateError {
	return &InvalidStateError{Reason: fmt.Sprintf(format, args...)}
}

// ChannelFetchError wraps a failure to reach or parse one channel's
// source. It is logged and isolated, never propagated across channels.
type ChannelFetchError struct {
	ChannelID string
	Err       error
}

func (e *ChannelFetchError) Error() string {
	return fmt.Sprintf("channel %s fetch failed: %v", e.ChannelID, e.Err)
}

func (e *ChannelFetchError) Unwrap() error {
	return e.Err
}

// RunFault marks a failure of the ingestion pass itself rather than of an
// individual channel.
type RunFault struct {
	Err error
}

func (e *RunFault) Error() string {
	return fmt.Sprintf("ingestion run failed: %v", e.Err)
}

func (e *RunFault) Unwrap() error {
	return e.Err
}
