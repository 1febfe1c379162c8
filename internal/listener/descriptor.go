package listener

import (
	"errors"
	"net"
)

var ErrListener = errors.New("listener error")

// Capabilities of a listener.
type Profile int

const (
	HTTP  Profile = iota // Plain HTTP, no control API.
	HTTPS                // Connections are expected to speak TLS.
	Unix                 // Local clients; the control API is reachable.
)

// Whether connections are expected to speak TLS.
func (p Profile) TLS() bool { return p == HTTPS }

// Whether the control API is reachable.
func (p Profile) AllowControl() bool { return p == Unix }

func (p Profile) String() string {
	switch p {
	case HTTP:
		return "http"
	case HTTPS:
		return "https"
	case Unix:
		return "unix"
	}
	return "unknown"
}

// Where a listener came from.
type Source int

const (
	Configured Source = iota // Bound by the daemon from the configuration.
	Inherited                // Passed in by the service manager.
)

func (s Source) String() string {
	if s == Inherited {
		return "inherited"
	}
	return "configured"
}

// An open listener and its capabilities, fixed at creation.
type Descriptor struct {
	net.Listener
	profile Profile
	source  Source
}

func NewDescriptor(l net.Listener, p Profile, src Source) Descriptor {
	return Descriptor{Listener: l, profile: p, source: src}
}

func (d Descriptor) Profile() Profile { return d.profile }

func (d Descriptor) Source() Source { return d.source }

// Closes every listener in ds, ignoring errors.
func CloseAll(ds []Descriptor) {
	for _, d := range ds {
		_ = d.Close()
	}
}
