package app

import "errors"

// Sentinel errors, checked with errors.Is at the handler boundary where they
// are mapped to HTTP status codes. Client code wraps them with context via
// fmt.Errorf("...: %w", err).
var (
	// ErrUnauthenticated means the provider rejected the bearer token or
	// returned no user for it.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound means the addressed record does not exist where the
	// operation requires it to.
	ErrNotFound = errors.New("not found")
)
