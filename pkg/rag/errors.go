package rag

import (
	"errors"
	"fmt"
)

// ErrSelectionEmpty is returned before any backend call when a query arrives
// with no selected sources.
var ErrSelectionEmpty = errors.New("no sources selected")

// NotFoundError reports a transcript that does not exist in the store.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transcript %q not found", e.ID)
}

// ContentUnavailableError reports a store fetch that failed or returned
// nothing for an identifier.
type ContentUnavailableError struct {
	ID  string
	Err error
}

func (e *ContentUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("content unavailable for %q: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("content unavailable for %q", e.ID)
}

func (e *ContentUnavailableError) Unwrap() error { return e.Err }

// MapError marks one document's failed map call. It is non-fatal to the
// overall query and never aborts sibling map calls.
type MapError struct {
	SourceID string
	Err      error
}

func (e *MapError) Error() string {
	return fmt.Sprintf("map call failed for source %q: %v", e.SourceID, e.Err)
}

func (e *MapError) Unwrap() error { return e.Err }

// AllMapsFailedError is fatal: every document's map call failed, so no
// reduce is attempted.
type AllMapsFailedError struct {
	Failures []*MapError
}

func (e *AllMapsFailedError) Error() string {
	return fmt.Sprintf("all %d map calls failed", len(e.Failures))
}

// ReduceError is fatal to the query but the completed partial answers are
// carried on the exchange so no finished work is lost.
type ReduceError struct {
	Err error
}

func (e *ReduceError) Error() string {
	return fmt.Sprintf("reduce call failed: %v", e.Err)
}

func (e *ReduceError) Unwrap() error { return e.Err }
