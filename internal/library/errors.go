package library

import "errors"

var (
	// ErrNotFound indicates the requested entry or platform doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrServiceUnavailable indicates the library service cannot be reached.
	ErrServiceUnavailable = errors.New("library service unavailable")

	// ErrUnauthorized indicates the library service rejected the credentials.
	ErrUnauthorized = errors.New("library service rejected credentials")
)
