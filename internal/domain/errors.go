package domain

import (
	"errors"
	"fmt"
)

// ErrDuplicate marks an insert rejected by the storage uniqueness constraint
// on (post_id, category). It surfaces inside a StorageError when two
// overlapping cycles raced past the dedup filter for the same notice.
var ErrDuplicate = errors.New("notice already stored")

// NetworkError reports a transport or HTTP-status failure while retrieving a
// list or detail page. Not retried within the failing unit; the next poll
// cycle is the recovery path.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports an expected structural element missing from fetched
// markup. At list level it aborts the cycle; at detail level it aborts only
// that notice's unit.
type ParseError struct {
	URL     string
	Element string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.URL, e.Element, e.Err)
	}
	return fmt.Sprintf("parse %s: missing %s", e.URL, e.Element)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError reports a failed store interaction. The record is lost for
// this attempt; the notice stays absent from storage and is re-offered by the
// dedup filter on the next cycle.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
