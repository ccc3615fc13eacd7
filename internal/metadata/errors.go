package metadata

import "errors"

var (
	// ErrSourceUnavailable indicates the catalog source could not be reached
	// and no cached copy exists.
	ErrSourceUnavailable = errors.New("metadata source unavailable")

	// ErrUnknownPlatform indicates no catalog is configured for the platform.
	ErrUnknownPlatform = errors.New("no catalog configured for platform")
)
