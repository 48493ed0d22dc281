package geometry

import (
	"fmt"

	"github.com/da0bi/psysmon/feature/geometry/inventory"
)

// ReferenceError reports an entity whose reference to another entity could
// not be resolved against the current transaction's state. It aborts the
// running operation with a rollback.
type ReferenceError struct {
	// Kind and Key identify the entity being processed.
	Kind inventory.Kind
	Key  string
	// RefKind and RefKey identify the reference that did not resolve.
	RefKind inventory.Kind
	RefKey  string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %q references unknown %s %q", e.Kind, e.Key, e.RefKind, e.RefKey)
}

// IntegrityError reports a store-level constraint violation or query
// failure while processing one entity. It aborts the running operation
// with a rollback.
type IntegrityError struct {
	Kind inventory.Kind
	Key  string
	Err  error
}

func (e *IntegrityError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("integrity violation: %v", e.Err)
	}
	return fmt.Sprintf("integrity violation on %s %q: %v", e.Kind, e.Key, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// ResourceError reports a failure to acquire or release the write session.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("session %s failed: %v", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
