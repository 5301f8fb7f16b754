// Package apperr holds the sentinel errors shared by the library, viewer and
// transport layers. Wrap them with fmt.Errorf("...: %w", ...) and test with
// errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound marks a missing diagram, session or node.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a request that clashes with current state, such as a
	// stale If-Match or a gesture already in progress.
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalid marks input that can never succeed as given.
	ErrInvalid = errors.New("invalid")
)
