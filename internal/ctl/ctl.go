// Package ctl talks to a running daemon over its Unix control socket.
package ctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/opencontainers/go-digest"
	"github.com/pelletier/go-toml/v2"

	"github.com/signalgarden/melia/internal/config"
)

var (
	ErrCtl       = errors.New("control request failed")
	ErrIntegrity = errors.New("configuration does not match its digest")
)

// Client for one daemon's control socket.
type Client struct {
	socket string
	http   *http.Client
}

// Creates a client for the control socket at path.
//
// No connection is made until a request is sent. Each request dials the
// socket afresh, and an unreachable socket fails the request immediately.
func Dial(path string) *Client {
	return &Client{
		socket: path,
		http: &http.Client{Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", path)
			},
			DisableKeepAlives: true,
		}},
	}
}

// Fetches the daemon's effective configuration and the digest of its
// serialized form.
//
// When the daemon supplies an ETag, the body is verified against it.
func (c *Client) Config(ctx context.Context) (*config.Config, digest.Digest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://unix/api?config", nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrCtl, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", ErrCtl, c.socket, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %s: unexpected status %s", ErrCtl, c.socket, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrCtl, err)
	}

	dgst := digest.FromBytes(body)
	if etag := resp.Header.Get("ETag"); etag != "" {
		if want, err := strconv.Unquote(etag); err == nil && want != dgst.String() {
			return nil, "", fmt.Errorf("%w: got %s, header says %s", ErrIntegrity, dgst, want)
		}
	}

	var cfg config.Config
	if err := json.Unmarshal(body, &cfg); err != nil {
		return nil, "", fmt.Errorf("%w: decode configuration: %w", ErrCtl, err)
	}
	return &cfg, dgst, nil
}

// Writes the daemon's configuration to w as TOML.
func (c *Client) PrintConfig(ctx context.Context, w io.Writer) error {
	cfg, dgst, err := c.Config(ctx)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# %s\n", dgst); err != nil {
		return err
	}
	enc := toml.NewEncoder(w).SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("%w: encode configuration: %w", ErrCtl, err)
	}
	return nil
}
