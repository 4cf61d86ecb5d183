package domain

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a named resource is absent from the external
// system. Callers recover locally by falling back to unmatched/unresolved
// markers; it is never fatal to a run.
type NotFoundError struct {
	Resource string // "entity", "kit", "lot", "project", "file"
	Key      string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ConflictError reports that a creation call found the target already
// existing. Callers recover by re-querying the full listing for the owning
// parent.
type ConflictError struct {
	Resource string
	Key      string
	Message  string // vendor-supplied text, informational only
}

func (e ConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %q already exists: %s", e.Resource, e.Key, e.Message)
	}
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Key)
}

// TerminalError reports structurally invalid data that no retry can repair,
// such as an expiry date already in the past. It is surfaced as a per-item
// failure without aborting the run.
type TerminalError struct {
	Reason string
}

func (e TerminalError) Error() string { return e.Reason }

// TransportError wraps a non-success response with no recognised meaning. It
// propagates to the top of the run, which records it and continues with the
// remaining independent items.
type TransportError struct {
	Op  string
	Err error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e TransportError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var c ConflictError
	return errors.As(err, &c)
}

// IsTerminal reports whether err is a TerminalError.
func IsTerminal(err error) bool {
	var t TerminalError
	return errors.As(err, &t)
}
