package activation

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Address family of an inherited socket.
type Family int

const (
	FamilyUnix Family = iota
	FamilyInet
)

func (f Family) String() string {
	if f == FamilyUnix {
		return "unix"
	}
	return "inet"
}

// Socket type of an inherited socket. Sequenced-packet sockets count as
// stream sockets since they accept connections the same way.
type Kind int

const (
	Stream Kind = iota
	Datagram
)

func (k Kind) String() string {
	if k == Stream {
		return "stream"
	}
	return "datagram"
}

// Inherited socket descriptor.
//
// A Socket owns its descriptor. Call [Socket.Listener] to move it into a
// [net.Listener], or [Socket.Close] to release it.
type Socket struct {
	file      *os.File
	fd        int
	name      string
	family    Family
	kind      Kind
	listening bool
}

// Name assigned by the service manager, "unknown" if none.
func (s *Socket) Name() string { return s.name }

func (s *Socket) Family() Family { return s.family }

func (s *Socket) Kind() Kind { return s.kind }

// Reports whether the socket was in the listening state when probed.
func (s *Socket) Listening() bool { return s.listening }

// Descriptor number, or -1 once the socket was converted or closed.
func (s *Socket) Fd() int { return s.fd }

func (s *Socket) String() string {
	state := "connected"
	if s.listening {
		state = "listening"
	}
	return fmt.Sprintf("fd %d (%s, %s %s, %s)", s.fd, s.name, s.family, s.kind, state)
}

// Converts the socket into a [net.Listener].
//
// Only listening stream sockets convert. The descriptor is switched to
// non-blocking mode and handed to the runtime poller; the original descriptor
// is closed and the Socket no longer owns anything. A second call returns
// [ErrConsumed]. When conversion is refused the Socket keeps its descriptor.
func (s *Socket) Listener() (net.Listener, error) {
	if s.fd < 0 {
		return nil, ErrConsumed
	}
	if s.kind == Datagram {
		return nil, fmt.Errorf("fd %d: %w", s.fd, ErrDatagram)
	}
	if !s.listening {
		return nil, fmt.Errorf("fd %d: %w", s.fd, ErrNotListening)
	}
	if err := unix.SetNonblock(s.fd, true); err != nil {
		return nil, fmt.Errorf("fd %d: set non-blocking: %w", s.fd, err)
	}

	f, fd := s.file, s.fd
	s.file, s.fd = nil, -1

	// FileListener duplicates the descriptor; the original goes away with f.
	defer f.Close()
	l, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("fd %d: %w", fd, err)
	}
	return l, nil
}

// Releases an unconverted descriptor. Safe to call more than once.
func (s *Socket) Close() error {
	if s.fd < 0 {
		return nil
	}
	f := s.file
	s.file, s.fd = nil, -1
	return f.Close()
}
