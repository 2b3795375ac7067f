// file: utils/errors.go
package utils

import "errors"

// Sentinel errors shared by the service layer. Controllers map them to
// response codes; none of them ever carries the expected flag value.
var (
	// ErrNotFound: the referenced challenge, hint or team does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrLocked: the challenge's unlock conditions are not met for the team.
	ErrLocked = errors.New("challenge is locked")
	// ErrConflict: a concurrent duplicate credit or purchase lost the
	// check-and-insert race. Callers treat it as already-solved/already-owned,
	// never as a hard failure.
	ErrConflict = errors.New("duplicate operation")
)
