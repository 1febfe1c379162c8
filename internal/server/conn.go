package server

import (
	"errors"
	"net"
	"net/http"
	"sync"
)

var errConnServed = errors.New("connection served")

// Listener that hands out a single connection, then blocks until that
// connection is closed or hijacked.
//
// Serving it with an [http.Server] gives each accepted connection a server of
// its own. Serve returns once the connection ends.
type connListener struct {
	conn  net.Conn
	next  chan net.Conn
	done  chan struct{}
	close sync.Once
}

func newConnListener(conn net.Conn) *connListener {
	l := &connListener{
		conn: conn,
		next: make(chan net.Conn, 1),
		done: make(chan struct{}),
	}
	l.next <- conn
	return l
}

func (l *connListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.next:
		return c, nil
	case <-l.done:
		return nil, errConnServed
	}
}

func (l *connListener) Close() error {
	l.close.Do(func() { close(l.done) })
	return nil
}

func (l *connListener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// ConnState hook. A hijacked connection belongs to its hijacker, which for h2c
// is the HTTP/2 server running inside the handler.
func (l *connListener) track(_ net.Conn, state http.ConnState) {
	if state == http.StateClosed || state == http.StateHijacked {
		l.Close()
	}
}
