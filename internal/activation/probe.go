package activation

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Classifies a single descriptor and takes ownership of it when it is a
// socket. The descriptor is left open on error.
func Probe(fd int, name string) (*Socket, error) {
	s, err := probe(fd, name)
	if err != nil {
		return nil, err
	}
	s.file = os.NewFile(uintptr(fd), name)
	return s, nil
}

// Classifies an inherited descriptor.
//
// Sockets are identified by family (getsockname), then type (SO_TYPE), then
// listening state (SO_ACCEPTCONN). Anything that is not a socket yields an
// *UnsupportedTypeError naming what it is.
func probe(fd int, name string) (*Socket, error) {
	sa, err := unix.Getsockname(fd)
	if errors.Is(err, unix.ENOTSOCK) {
		return nil, classifyFile(fd)
	}
	if err != nil {
		return nil, fmt.Errorf("fd %d: getsockname: %w", fd, err)
	}

	s := &Socket{fd: fd, name: name}
	switch sa.(type) {
	case *unix.SockaddrUnix:
		s.family = FamilyUnix
	case *unix.SockaddrInet4, *unix.SockaddrInet6:
		s.family = FamilyInet
	default:
		return nil, &UnsupportedTypeError{Fd: fd, Type: Unrecognized}
	}

	typ, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_TYPE)
	if err != nil {
		return nil, fmt.Errorf("fd %d: SO_TYPE: %w", fd, err)
	}
	switch typ {
	case unix.SOCK_STREAM, unix.SOCK_SEQPACKET:
		s.kind = Stream
	case unix.SOCK_DGRAM:
		s.kind = Datagram
	default:
		return nil, &UnsupportedTypeError{Fd: fd, Type: Unrecognized}
	}

	if s.kind == Stream {
		acc, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ACCEPTCONN)
		if err != nil {
			return nil, fmt.Errorf("fd %d: SO_ACCEPTCONN: %w", fd, err)
		}
		s.listening = acc != 0
	}
	return s, nil
}

// Names the kind of file behind a descriptor that is not a socket.
func classifyFile(fd int) error {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return fmt.Errorf("fd %d: fstat: %w", fd, err)
	}
	format := st.Mode & unix.S_IFMT
	switch {
	case format == unix.S_IFIFO:
		return &UnsupportedTypeError{Fd: fd, Type: FIFO}
	case isMessageQueue(fd):
		return &UnsupportedTypeError{Fd: fd, Type: MessageQueue}
	case format == unix.S_IFREG, format == unix.S_IFCHR:
		return &UnsupportedTypeError{Fd: fd, Type: SpecialFile}
	}
	return &UnsupportedTypeError{Fd: fd, Type: Unrecognized}
}
