// internal/importer/errors.go
package importer

import (
	"errors"
	"fmt"

	"github.com/vmunix/gamarr/internal/download"
	"github.com/vmunix/gamarr/internal/library"
)

var (
	// ErrConnectivity indicates an external service could not be reached.
	ErrConnectivity = errors.New("external service unreachable")

	// ErrNoMatch indicates no catalog candidate cleared the confidence threshold.
	ErrNoMatch = errors.New("no metadata match")

	// ErrCollision indicates every disambiguated target path is taken.
	ErrCollision = errors.New("target path collision")

	// ErrIntegrity indicates a copied tree does not match its source, or the
	// source could not be removed after a verified copy.
	ErrIntegrity = errors.New("move integrity check failed")

	// ErrBelowMinimumSize indicates the download is smaller than the platform minimum.
	ErrBelowMinimumSize = errors.New("download below minimum size")

	// ErrPathTraversal indicates a path traversal attack was detected.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrUnknownPlatform indicates the download maps to no configured platform.
	ErrUnknownPlatform = errors.New("platform not configured")
)

// EntryError is a failure while processing one download.
type EntryError struct {
	DownloadID string
	Name       string
	Action     Action
	Err        error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Action, e.Name, e.DownloadID, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// connectivity tags client and service outages with ErrConnectivity.
func connectivity(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, download.ErrClientUnavailable) || errors.Is(err, library.ErrServiceUnavailable) {
		return fmt.Errorf("%w: %w", ErrConnectivity, err)
	}
	return err
}
