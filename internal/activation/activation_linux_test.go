package activation

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// High enough to stay clear of descriptors the test binary already uses.
const testStart = 300

// Places a duplicate of f at descriptor target, the way a service manager
// would before exec, and returns the inherited file under name.
func install(t *testing.T, f *os.File, target int, name string) *os.File {
	t.Helper()
	require.NoError(t, unix.Dup3(int(f.Fd()), target, unix.O_CLOEXEC))
	require.NoError(t, f.Close())
	inherited := os.NewFile(uintptr(target), name)
	t.Cleanup(func() { _ = inherited.Close() })
	return inherited
}

func TestCollectClassifiesSockets(t *testing.T) {
	tcp, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer tcp.Close()

	uln, err := net.Listen("unix", filepath.Join(t.TempDir(), "ctl.sock"))
	require.NoError(t, err)
	defer uln.Close()

	udp, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer udp.Close()

	client, err := net.Dial("tcp", tcp.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	sources := []func() (*os.File, error){
		tcp.(*net.TCPListener).File,
		uln.(*net.UnixListener).File,
		udp.(*net.UDPConn).File,
		client.(*net.TCPConn).File,
	}
	names := []string{"web", "ctl", "dgram", "peer"}
	var files []*os.File
	for i, source := range sources {
		f, err := source()
		require.NoError(t, err)
		files = append(files, install(t, f, testStart+i, names[i]))
	}

	sockets, err := collect(files)
	require.NoError(t, err)
	require.Len(t, sockets, 4)

	web, ctl, dgram, peer := sockets[0], sockets[1], sockets[2], sockets[3]

	require.Equal(t, "web", web.Name())
	require.Equal(t, FamilyInet, web.Family())
	require.Equal(t, Stream, web.Kind())
	require.True(t, web.Listening())

	require.Equal(t, FamilyUnix, ctl.Family())
	require.True(t, ctl.Listening())

	require.Equal(t, Datagram, dgram.Kind())
	require.False(t, dgram.Listening())

	require.Equal(t, Stream, peer.Kind())
	require.False(t, peer.Listening())

	_, err = dgram.Listener()
	require.ErrorIs(t, err, ErrDatagram)
	require.True(t, errdefs.IsNotImplemented(err))
	require.Equal(t, testStart+2, dgram.Fd(), "refused conversion must keep the descriptor")

	_, err = peer.Listener()
	require.ErrorIs(t, err, ErrNotListening)

	l, err := web.Listener()
	require.NoError(t, err)
	defer l.Close()
	require.Equal(t, -1, web.Fd())

	_, err = web.Listener()
	require.ErrorIs(t, err, ErrConsumed)

	// The converted listener serves the inherited socket.
	go func() {
		c, err := net.Dial("tcp", tcp.Addr().String())
		if err == nil {
			_, _ = c.Write([]byte("x"))
			_ = c.Close()
		}
	}()
	conn, err := l.Accept()
	require.NoError(t, err)
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "x", string(buf))
	require.NoError(t, conn.Close())

	// Closing an unconverted socket is idempotent.
	require.NoError(t, dgram.Close())
	require.NoError(t, dgram.Close())
}

func TestCollectNamesFallBackToUnknown(t *testing.T) {
	tcp, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer tcp.Close()
	f, err := tcp.(*net.TCPListener).File()
	require.NoError(t, err)
	// go-systemd names descriptors missing from LISTEN_FDNAMES this way.
	inherited := install(t, f, testStart, "LISTEN_FD_"+strconv.Itoa(testStart))

	sockets, err := collect([]*os.File{inherited})
	require.NoError(t, err)
	require.Len(t, sockets, 1)
	require.Equal(t, "unknown", sockets[0].Name())
	require.NoError(t, sockets[0].Close())
}

func TestCollectRejectsNonSockets(t *testing.T) {
	regular, err := os.CreateTemp(t.TempDir(), "special")
	require.NoError(t, err)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer w.Close()

	tests := []struct {
		name string
		file *os.File
		want FileType
	}{
		{"fifo", r, FIFO},
		{"regular file", regular, SpecialFile},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd := testStart + 10 + i
			inherited := install(t, tt.file, fd, "LISTEN_FD_"+strconv.Itoa(fd))

			_, err := collect([]*os.File{inherited})

			var terr *UnsupportedTypeError
			require.True(t, errors.As(err, &terr), "err = %v", err)
			require.Equal(t, tt.want, terr.Type)
			require.Equal(t, fd, terr.Fd)
			require.True(t, errdefs.IsNotImplemented(err))

			// Descriptors are released on failure.
			var st unix.Stat_t
			require.ErrorIs(t, unix.Fstat(fd, &st), unix.EBADF)
		})
	}
}
