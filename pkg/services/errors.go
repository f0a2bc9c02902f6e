package services

import (
	"errors"
	"fmt"
)

var (
	// ErrPostNotFound means the CMS holds no document for the requested uid.
	ErrPostNotFound = errors.New("post not found")
	// ErrLoadInProgress rejects a LoadMore issued while another is pending.
	ErrLoadInProgress = errors.New("a page load is already in progress")
)

// MalformedDocumentError reports a CMS document missing a required field, or
// one that could not be decoded at all (Err set).
type MalformedDocumentError struct {
	DocumentID string
	Field      string
	Err        error
}

func (e *MalformedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("document %q could not be decoded: %v", e.DocumentID, e.Err)
	}
	return fmt.Sprintf("document %q is missing required field %q", e.DocumentID, e.Field)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// PageLoadError is returned when fetching the next listing page fails. The
// state it was called with is untouched, so retrying with Cursor is safe.
type PageLoadError struct {
	Cursor string
	Err    error
}

func (e *PageLoadError) Error() string {
	return fmt.Sprintf("load page at cursor %q: %v", e.Cursor, e.Err)
}

func (e *PageLoadError) Unwrap() error { return e.Err }

// UpstreamFetchError wraps a failed CMS query or lookup.
type UpstreamFetchError struct {
	Op  string
	Err error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("cms %s: %v", e.Op, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }
