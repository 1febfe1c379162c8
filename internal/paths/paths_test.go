package paths

import (
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

func TestSystemDirectories(t *testing.T) {
	d := System()

	want := map[string]string{
		"Runtime":       "/run/melia",
		"State":         "/var/lib/melia",
		"Cache":         "/var/cache/melia",
		"Logs":          "/var/log/melia",
		"Configuration": "/etc/melia",
	}
	got := map[string]string{
		"Runtime":       d.Runtime,
		"State":         d.State,
		"Cache":         d.Cache,
		"Logs":          d.Logs,
		"Configuration": d.Configuration,
	}
	for name, w := range want {
		if got[name] != w {
			t.Errorf("%s = %q, want %q", name, got[name], w)
		}
	}
}

func TestDiscoverUserFollowsXDG(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/tmp/run-test")
	t.Setenv("XDG_STATE_HOME", "/tmp/state-test")
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache-test")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/config-test")
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	d := discoverUser()

	if d.Runtime != filepath.Join("/tmp/run-test", "melia") {
		t.Errorf("Runtime = %q", d.Runtime)
	}
	if d.State != filepath.Join("/tmp/state-test", "melia") {
		t.Errorf("State = %q", d.State)
	}
	if d.Cache != filepath.Join("/tmp/cache-test", "melia") {
		t.Errorf("Cache = %q", d.Cache)
	}
	if d.Configuration != filepath.Join("/tmp/config-test", "melia") {
		t.Errorf("Configuration = %q", d.Configuration)
	}
	if d.Logs != "" {
		t.Errorf("Logs = %q, want empty", d.Logs)
	}
}

func TestUserIsStable(t *testing.T) {
	a := User()
	b := User()
	if a != b {
		t.Fatalf("User() changed between calls: %+v vs %+v", a, b)
	}
}

func TestPIDFile(t *testing.T) {
	if got := PIDFile("/run/melia"); got != "/run/melia/melia.pid" {
		t.Errorf("PIDFile = %q", got)
	}
}
