package storage

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeNotFound    = errors.New("node not found")
	ErrEdgeNotFound    = errors.New("edge not found")
	ErrStoreClosed     = errors.New("store is closed")
	ErrTypeConflict    = errors.New("node type conflict")
	ErrEndpointMissing = errors.New("edge endpoint missing")
)

// StoreError provides structured error information for store operations.
type StoreError struct {
	Op     string // operation that failed ("UpsertNode", "GetNode", ...)
	Entity string // "node" or "edge"
	ID     string // node id or edge key string, if applicable
	Cause  error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

func nodeError(op, id string, cause error) error {
	return &StoreError{Op: op, Entity: "node", ID: id, Cause: cause}
}

func edgeError(op, key string, cause error) error {
	return &StoreError{Op: op, Entity: "edge", ID: key, Cause: cause}
}

// IsNotFound reports whether err indicates a missing node or edge.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound) || errors.Is(err, ErrEdgeNotFound)
}

// IsUnavailable reports whether err indicates the store cannot serve
// requests at all, as opposed to a per-item failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreClosed)
}
