package hn

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks a caller-supplied argument rejected before any
// network call (e.g. a non-positive item id).
var ErrInvalidInput = errors.New("invalid input")

// NotFoundError means the API confirmed no item exists for the id. Distinct
// from a deleted item, which still has a record.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("hn item %d not found", e.ID)
}

// UpstreamError is a transport or HTTP failure from the HN API. Status is
// zero when the request never produced a response.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hn upstream: %v", e.Err)
	}
	return fmt.Sprintf("hn upstream: status %d", e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// CycleError is raised defensively when a child id references an ancestor
// currently being resolved.
type CycleError struct {
	ID int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("hn item %d references an ancestor of itself", e.ID)
}

// FailureKind maps a fetch error onto the placeholder marker vocabulary.
func FailureKind(err error) string {
	var nf *NotFoundError
	var cy *CycleError
	switch {
	case errors.As(err, &nf):
		return FailureNotFound
	case errors.As(err, &cy):
		return FailureCycle
	default:
		return FailureUpstream
	}
}
