package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/signalgarden/melia/internal/activation"
	"github.com/signalgarden/melia/internal/config"
	"github.com/signalgarden/melia/internal/listener"
	"github.com/signalgarden/melia/internal/paths"
)

const (

	// Upper bound for the pause between failed accepts on one listener.
	maxAcceptDelay = time.Second

	// First pause after a failed accept.
	minAcceptDelay = 5 * time.Millisecond
)

var (
	ErrServer      = errors.New("server error")
	ErrNoListeners = fmt.Errorf("%w: nothing to listen on", ErrServer)
)

// Serves listener descriptors with the daemon's HTTP service.
type Server struct {
	shared    *config.Shared // Configuration exposed through the control API.
	h2        *http2.Server  // Shared HTTP/2 settings for every connection.
	startedAt time.Time      // When Run was called.
}

// Creates a server that reads configuration from shared.
//
// Nothing is served until [Server.Run] is called.
func New(shared *config.Shared) *Server {
	return &Server{
		shared: shared,
		h2:     &http2.Server{},
	}
}

// Serves every descriptor until ctx is cancelled.
//
// Cancelling ctx closes the listeners; Run returns once all accept loops have
// exited. Connections that are still open keep running until they finish on
// their own or the process exits. Returns [ErrNoListeners] when ds is empty.
func (s *Server) Run(ctx context.Context, ds []listener.Descriptor) error {
	if len(ds) == 0 {
		return ErrNoListeners
	}
	s.startedAt = time.Now()

	stop := context.AfterFunc(ctx, func() {
		slog.Info("closing listeners")
		if _, err := activation.Notify(activation.Stopping); err != nil {
			slog.Warn("failed to notify service manager", "error", err)
		}
		listener.CloseAll(ds)
	})
	defer stop()

	pidFile := s.writePID()
	if pidFile != "" {
		defer os.Remove(pidFile)
	}

	var g errgroup.Group
	for _, d := range ds {
		handler := s.Handler(d.Profile())
		g.Go(func() error {
			s.accept(d, handler)
			return nil
		})
	}

	if sent, err := activation.Notify(activation.Ready); err != nil {
		slog.Warn("failed to notify service manager", "error", err)
	} else if sent {
		slog.Debug("notified service manager", "state", activation.Ready)
	}
	slog.Info("serving", "listeners", len(ds))

	err := g.Wait()
	slog.Info("stopped serving", "uptime", time.Since(s.startedAt).Truncate(time.Second).String())
	return err
}

// Accepts connections until the listener is closed.
func (s *Server) accept(d listener.Descriptor, handler http.Handler) {
	addr := d.Addr().String()
	var delay time.Duration
	for {
		conn, err := d.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				slog.Debug("listener closed", "address", addr)
				return
			}
			delay = nextDelay(delay)
			slog.Error("accept error", "address", addr, "error", err, "retry", delay)
			time.Sleep(delay)
			continue
		}
		delay = 0

		go s.handle(conn, handler)
	}
}

// Doubles the accept backoff, starting at minAcceptDelay and stopping at
// maxAcceptDelay.
func nextDelay(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptDelay
	}
	return min(2*d, maxAcceptDelay)
}

// Serves a single connection to completion.
//
// Each connection runs its own [http.Server] over a listener that yields only
// this connection, so a failure stays inside this goroutine.
func (s *Server) handle(conn net.Conn, handler http.Handler) {
	remote := conn.RemoteAddr().String()
	slog.Debug("connection accepted", "remote", remote, "local", conn.LocalAddr().String())

	l := newConnListener(conn)
	srv := &http.Server{
		Handler:   h2c.NewHandler(handler, s.h2),
		ConnState: l.track,
		ErrorLog:  slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}
	if err := srv.Serve(l); err != nil && !errors.Is(err, errConnServed) {
		slog.Warn("connection error", "remote", remote, "error", err)
	}
	slog.Debug("connection finished", "remote", remote)
}

// Writes the daemon PID into the runtime directory. Returns the path written,
// or an empty string when there is no runtime directory or writing failed.
func (s *Server) writePID() string {
	dir := s.shared.Snapshot().Directories.Runtime
	if dir == "" {
		return ""
	}
	path := paths.PIDFile(dir)
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), paths.DefaultFileMode); err != nil {
		slog.Warn("failed to write PID file", "path", path, "error", err)
		return ""
	}
	return path
}
