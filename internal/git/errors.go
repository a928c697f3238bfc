package git

import "fmt"

// RefNotFoundError indicates that the base branch does not exist. It aborts
// the run before any branch is created
type RefNotFoundError struct {
	Ref string
}

func (e *RefNotFoundError) Error() string {
	return fmt.Sprintf("ref %q not found", e.Ref)
}

// BranchCreateError indicates that branch creation failed. It aborts the run
type BranchCreateError struct {
	Branch string
	Err    error
}

func (e *BranchCreateError) Error() string {
	return fmt.Sprintf("failed to create branch %q: %v", e.Branch, e.Err)
}

func (e *BranchCreateError) Unwrap() error { return e.Err }

// ContentFetchError indicates that reading a file's current content failed
type ContentFetchError struct {
	Path string
	Err  error
}

func (e *ContentFetchError) Error() string {
	return fmt.Sprintf("failed to fetch content of %q: %v", e.Path, e.Err)
}

func (e *ContentFetchError) Unwrap() error { return e.Err }

// ConflictError indicates a conditional write was rejected because the blob
// sha presented was stale. The staleness is surfaced, not retried: a re-fetch
// cannot distinguish concurrent external modification from a logic error
type ConflictError struct {
	Path string
	Err  error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting write to %q: stale blob sha", e.Path)
}

func (e *ConflictError) Unwrap() error { return e.Err }
