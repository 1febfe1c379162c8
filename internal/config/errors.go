package config

import (
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
)

var (
	ErrAccess            = errors.New("could not access file/directory")
	ErrMalformedDocument = errors.New("malformed configuration document")
	ErrMalformedURL      = fmt.Errorf("malformed URL: %w", errdefs.ErrInvalidArgument)
	ErrInvalidURLHost    = fmt.Errorf("URL host is invalid: %w", errdefs.ErrInvalidArgument)
	ErrUnsupportedScheme = fmt.Errorf("unsupported URL scheme: %w", errdefs.ErrInvalidArgument)
	ErrInvalidParameter  = fmt.Errorf("invalid socket parameter: %w", errdefs.ErrInvalidArgument)
	ErrInvalidMode       = fmt.Errorf("invalid directory creation mode: %w", errdefs.ErrInvalidArgument)
)

// A configuration failure tied to the file, directory, or address that caused
// it.
//
// Every error returned by [Resolve] wraps an *Error, so the offending value can be
// reported before the process exits.
type Error struct {
	Path string // Offending path or address. May be empty.
	Err  error  // Underlying failure, wrapping one of the package sentinels.
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s in %q", e.Err, e.Path)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e *Error) Unwrap() error {
	return e.Err
}

// Builds an *Error from a sentinel and the cause reported by the system.
func newError(path string, sentinel, cause error) *Error {
	if cause == nil {
		return &Error{Path: path, Err: sentinel}
	}
	return &Error{Path: path, Err: fmt.Errorf("%w: %w", sentinel, cause)}
}
