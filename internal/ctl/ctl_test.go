package ctl

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/netip"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"

	"github.com/signalgarden/melia/internal/config"
	"github.com/signalgarden/melia/internal/listener"
	"github.com/signalgarden/melia/internal/server"
)

func daemon(t *testing.T, cfg *config.Config) string {
	t.Helper()
	t.Setenv("NOTIFY_SOCKET", "")

	path := filepath.Join(t.TempDir(), "ctl.sock")
	l, err := net.Listen("unix", path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.New(config.NewShared(cfg)).Run(ctx, []listener.Descriptor{listener.NewDescriptor(l, listener.Unix, listener.Configured)})
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Error("daemon did not stop")
		}
	})
	return path
}

func sample() *config.Config {
	return &config.Config{
		Directories: config.Directories{
			CreateDirectories: config.CreateRecursive,
			Runtime:           "/run/melia",
			State:             "/var/lib/melia",
		},
		Listen: config.Listen{
			HTTP: []netip.AddrPort{netip.MustParseAddrPort("127.0.0.1:8080")},
			Unix: []config.UnixAddress{{Path: "/run/melia/ctl", Group: "melia", Mode: config.Mode(0o660).Ptr()}},
		},
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := daemon(t, sample())

	cfg, dgst, err := Dial(path).Config(context.Background())
	require.NoError(t, err)
	require.NoError(t, dgst.Validate())
	require.Equal(t, digest.SHA256, dgst.Algorithm())

	require.Equal(t, config.CreateRecursive, cfg.Directories.CreateDirectories)
	require.Equal(t, "/var/lib/melia", cfg.Directories.State)
	require.Equal(t, sample().Listen.HTTP, cfg.Listen.HTTP)
	require.Equal(t, sample().Listen.Unix, cfg.Listen.Unix)
}

func TestPrintConfigRendersTOML(t *testing.T) {
	path := daemon(t, sample())

	var buf bytes.Buffer
	require.NoError(t, Dial(path).PrintConfig(context.Background(), &buf))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "# sha256:"), "missing digest comment:\n%s", out)

	var back config.Config
	require.NoError(t, toml.Unmarshal(buf.Bytes(), &back))
	require.Equal(t, "/run/melia", back.Directories.Runtime)
	require.Equal(t, config.CreateRecursive, back.Directories.CreateDirectories)
	require.Equal(t, sample().Listen.HTTP, back.Listen.HTTP)
	require.Equal(t, config.Mode(0o660).Ptr(), back.Listen.Unix[0].Mode)
}

func TestUnreachableSocket(t *testing.T) {
	c := Dial(filepath.Join(t.TempDir(), "absent.sock"))

	_, _, err := c.Config(context.Background())
	require.ErrorIs(t, err, ErrCtl)
}

func fakeDaemon(t *testing.T, h http.Handler) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake.sock")
	l, err := net.Listen("unix", path)
	require.NoError(t, err)
	srv := &http.Server{Handler: h}
	go srv.Serve(l)
	t.Cleanup(func() { srv.Close() })
	return path
}

func TestDigestMismatch(t *testing.T) {
	path := fakeDaemon(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"`+digest.FromString("something else").String()+`"`)
		w.Write([]byte(`{"directories":{},"listen":{}}`))
	}))

	_, _, err := Dial(path).Config(context.Background())
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestControlDisabled(t *testing.T) {
	path := fakeDaemon(t, http.NotFoundHandler())

	_, _, err := Dial(path).Config(context.Background())
	require.ErrorIs(t, err, ErrCtl)
	require.Contains(t, err.Error(), "404")
}
