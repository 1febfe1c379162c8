package activation

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrConsumed     = errors.New("socket already converted")
	ErrNotListening = fmt.Errorf("stream socket is not listening: %w", errdefs.ErrFailedPrecondition)
	ErrDatagram     = fmt.Errorf("datagram sockets cannot accept connections: %w", errdefs.ErrNotImplemented)
)

// Kind of file behind an inherited descriptor that is not a socket.
type FileType string

const (
	FIFO         FileType = "FIFO"
	MessageQueue FileType = "POSIX message queue"
	SpecialFile  FileType = "special file"
	Unrecognized FileType = "unrecognized"
)

// An inherited descriptor of a type the daemon cannot serve.
type UnsupportedTypeError struct {
	Fd   int
	Type FileType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("inherited descriptor %d is an unsupported type: %s", e.Fd, e.Type)
}

// Unwrap classifies the error as not implemented.
func (e *UnsupportedTypeError) Unwrap() error {
	return errdefs.ErrNotImplemented
}
