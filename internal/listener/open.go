package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"

	"github.com/signalgarden/melia/internal/activation"
	"github.com/signalgarden/melia/internal/config"
)

// Opens every listener the daemon serves.
//
// Inherited sockets come first, in descriptor order: Unix sockets get the
// [Unix] profile, Internet sockets get [HTTPS] when the service manager named
// them "https" and [HTTP] otherwise. Configured HTTP, HTTPS, and Unix addresses
// follow. Port numbers the operating system chose and the addresses of
// inherited sockets are recorded in shared.
//
// On failure, every listener opened so far and every unconverted socket is
// closed.
func Open(ctx context.Context, sockets []*activation.Socket, shared *config.Shared) (ds []Descriptor, err error) {
	defer func() {
		if err != nil {
			CloseAll(ds)
			ds = nil
			for _, s := range sockets {
				_ = s.Close()
			}
		}
	}()

	var inherited config.Listen
	for _, s := range sockets {
		d, addr, err := adopt(s)
		if err != nil {
			return ds, err
		}
		ds = append(ds, d)
		inherited.Add(addr)
		slog.Info("adopted inherited socket", "name", s.Name(), "address", d.Addr().String(), "profile", d.Profile().String())
	}

	cfg := shared.Snapshot()
	lc := &net.ListenConfig{}

	for i, ap := range cfg.Listen.HTTP {
		d, bound, err := listenInet(ctx, lc, ap, HTTP)
		if err != nil {
			return ds, err
		}
		ds = append(ds, d)
		cfg.Listen.HTTP[i] = bound
	}

	for i, ap := range cfg.Listen.HTTPS {
		d, bound, err := listenInet(ctx, lc, ap, HTTPS)
		if err != nil {
			return ds, err
		}
		ds = append(ds, d)
		cfg.Listen.HTTPS[i] = bound
	}

	for _, ua := range cfg.Listen.Unix {
		l, err := listenUnix(ctx, lc, ua)
		if err != nil {
			return ds, err
		}
		ds = append(ds, NewDescriptor(l, Unix, Configured))
		slog.Info("listening", "address", "unix:"+ua.Path, "profile", Unix.String())
	}

	shared.Update(func(c *config.Config) {
		c.Listen.HTTP = append(cfg.Listen.HTTP, inherited.HTTP...)
		c.Listen.HTTPS = append(cfg.Listen.HTTPS, inherited.HTTPS...)
		c.Listen.Unix = append(cfg.Listen.Unix, inherited.Unix...)
	})
	return ds, nil
}

// Converts an inherited socket and picks its profile.
func adopt(s *activation.Socket) (Descriptor, config.Address, error) {
	name := s.Name()
	l, err := s.Listener()
	if err != nil {
		return Descriptor{}, config.Address{}, fmt.Errorf("%w: inherited socket %q: %w", ErrListener, name, err)
	}

	var (
		p    Profile
		addr config.Address
	)
	switch a := l.Addr().(type) {
	case *net.UnixAddr:
		p = Unix
		addr = config.Address{Scheme: config.SchemeUnix, Unix: config.UnixAddress{Path: a.Name}}
	case *net.TCPAddr:
		p = HTTP
		addr.Scheme = config.SchemeHTTP
		if name == "https" {
			p = HTTPS
			addr.Scheme = config.SchemeHTTPS
		}
		addr.AddrPort = unmap(a.AddrPort())
	default:
		l.Close()
		return Descriptor{}, config.Address{}, fmt.Errorf("%w: inherited socket %q has unsupported address %s", ErrListener, name, l.Addr())
	}
	return NewDescriptor(l, p, Inherited), addr, nil
}

// Binds a TCP listener and reports the address actually bound.
func listenInet(ctx context.Context, lc *net.ListenConfig, ap netip.AddrPort, p Profile) (Descriptor, netip.AddrPort, error) {
	l, err := lc.Listen(ctx, "tcp", ap.String())
	if err != nil {
		return Descriptor{}, netip.AddrPort{}, fmt.Errorf("%w: listen on %s: %w", ErrListener, ap, err)
	}
	bound := ap
	if a, ok := l.Addr().(*net.TCPAddr); ok {
		bound = netip.AddrPortFrom(ap.Addr(), uint16(a.Port))
	}
	if p.TLS() {
		slog.Warn("TLS is not implemented, serving plaintext", "address", bound.String())
	}
	slog.Info("listening", "address", bound.String(), "profile", p.String())
	return NewDescriptor(l, p, Configured), bound, nil
}

// IPv4 addresses of dual-stack sockets come back as ::ffff:a.b.c.d.
func unmap(ap netip.AddrPort) netip.AddrPort {
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}
