package listener

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/user"
	"strconv"

	"github.com/signalgarden/melia/internal/config"
)

// Binds a Unix domain socket, removing any stale socket from a previous run,
// and applies the ownership and mode the address asks for.
func listenUnix(ctx context.Context, lc *net.ListenConfig, addr config.UnixAddress) (net.Listener, error) {
	if err := removeStale(addr.Path); err != nil {
		return nil, err
	}

	l, err := lc.Listen(ctx, "unix", addr.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: listen on %s: %w", ErrListener, addr.Path, err)
	}

	if err := setSocketPermissions(addr); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

// Removes path if it is a socket. Any other kind of file is left alone and
// reported, since binding over it would fail anyway.
func removeStale(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListener, err)
	}
	if info.Mode().Type() != fs.ModeSocket {
		return fmt.Errorf("%w: %s exists and is not a socket", ErrListener, path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: remove stale socket: %w", ErrListener, err)
	}
	return nil
}

// Applies owner, group, and mode. Unset fields are left as the bind produced
// them. The names were given explicitly, so failing to honor them is fatal.
func setSocketPermissions(addr config.UnixAddress) error {
	uid, gid := -1, -1

	if addr.User != "" {
		u, err := user.Lookup(addr.User)
		if err != nil {
			return fmt.Errorf("%w: socket owner %q: %w", ErrListener, addr.User, err)
		}
		if uid, err = strconv.Atoi(u.Uid); err != nil {
			return fmt.Errorf("%w: socket owner %q has uid %q", ErrListener, addr.User, u.Uid)
		}
	}

	if addr.Group != "" {
		g, err := user.LookupGroup(addr.Group)
		if err != nil {
			return fmt.Errorf("%w: socket group %q: %w", ErrListener, addr.Group, err)
		}
		if gid, err = strconv.Atoi(g.Gid); err != nil {
			return fmt.Errorf("%w: socket group %q has gid %q", ErrListener, addr.Group, g.Gid)
		}
	}

	if uid != -1 || gid != -1 {
		if err := os.Chown(addr.Path, uid, gid); err != nil {
			return fmt.Errorf("%w: chown socket %s: %w", ErrListener, addr.Path, err)
		}
	}

	if addr.Mode != nil {
		if err := os.Chmod(addr.Path, os.FileMode(*addr.Mode)); err != nil {
			return fmt.Errorf("%w: chmod socket %s: %w", ErrListener, addr.Path, err)
		}
	}
	return nil
}
