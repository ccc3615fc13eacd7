package download

import "errors"

// Sentinel errors for the download package.
var (
	// ErrClientUnavailable is returned when the download client cannot be reached
	// or rejects the login.
	ErrClientUnavailable = errors.New("download client unavailable")

	// ErrDownloadNotFound is returned when a download is not found in the client.
	ErrDownloadNotFound = errors.New("download not found in client")
)
