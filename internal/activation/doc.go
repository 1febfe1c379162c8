// Package activation takes over sockets passed in by a service manager.
//
// When systemd starts a socket-activated service it leaves the listening
// sockets open at file descriptors 3 and up, and describes them through three
// environment variables:
//
//	LISTEN_PID      process the descriptors are meant for
//	LISTEN_FDS      number of descriptors
//	LISTEN_FDNAMES  optional colon-separated names from FileDescriptorName=
//
// [Collect] reads these variables through go-systemd, unsets them so children
// do not inherit them, and probes every descriptor. A socket is classified by address family,
// socket type, and listening state. Descriptors that are not sockets (FIFOs,
// POSIX message queues, regular files and character devices) are reported
// through [UnsupportedTypeError].
//
// Each [Socket] owns its descriptor until [Socket.Listener] converts it into a
// [net.Listener]. The conversion can happen only once; afterwards the handle is
// empty and further attempts fail with [ErrConsumed].
//
// [Notify] reports lifecycle changes (READY=1, STOPPING=1) back to the service
// manager through $NOTIFY_SOCKET.
package activation
