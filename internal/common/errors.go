package common

import "errors"

// Domain error taxonomy. Services wrap these with fmt.Errorf("...: %w", ...)
// and handlers map them to HTTP statuses with errors.Is.
var (
	// ErrInvalidInput marks missing or malformed caller input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a lookup that matched nothing the caller may see.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an ownership mismatch. Handlers must not reveal
	// whether the target resource exists for someone else.
	ErrForbidden = errors.New("forbidden")

	// ErrExternal marks a failed, timed-out, or unparseable call to the
	// assistant or classifier collaborator.
	ErrExternal = errors.New("external service unavailable")
)
