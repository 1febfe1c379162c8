package activation

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

func setActivation(t *testing.T, pid, fds string) {
	t.Helper()
	t.Setenv("LISTEN_PID", pid)
	t.Setenv("LISTEN_FDS", fds)
	t.Setenv("LISTEN_FDNAMES", "")
}

func requireUnset(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LISTEN_PID", "LISTEN_FDS", "LISTEN_FDNAMES"} {
		if v, ok := os.LookupEnv(key); ok {
			t.Errorf("%s=%q left in environment", key, v)
		}
	}
}

func TestCollectWithoutActivation(t *testing.T) {
	setActivation(t, "", "")

	sockets, err := Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(sockets) != 0 {
		t.Errorf("got %d sockets, want none", len(sockets))
	}
	requireUnset(t)
}

func TestCollectIgnoresOtherProcess(t *testing.T) {
	setActivation(t, strconv.Itoa(os.Getpid()+1), "2")

	sockets, err := Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(sockets) != 0 {
		t.Errorf("got %d sockets, want none", len(sockets))
	}
	requireUnset(t)
}

func TestCollectIgnoresMalformedEnvironment(t *testing.T) {
	pid := strconv.Itoa(os.Getpid())
	tests := []struct {
		name string
		pid  string
		fds  string
	}{
		{"pid", "self", "1"},
		{"count", pid, "many"},
		{"zero", pid, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setActivation(t, tt.pid, tt.fds)

			sockets, err := Collect()
			if err != nil || len(sockets) != 0 {
				t.Errorf("Collect = %v, %v; want no sockets", sockets, err)
			}
			requireUnset(t)
		})
	}
}

func TestNotifyUnset(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")

	sent, err := Notify(Ready)
	if sent || err != nil {
		t.Errorf("Notify = %v, %v; want false, nil", sent, err)
	}
}

func TestNotifySendsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notify.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	t.Setenv("NOTIFY_SOCKET", path)

	sent, err := Notify(Stopping)
	if err != nil || !sent {
		t.Fatalf("Notify = %v, %v; want true, nil", sent, err)
	}

	buf := make([]byte, 64)
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := strings.TrimSpace(string(buf[:n])); got != Stopping {
		t.Errorf("received %q, want %q", got, Stopping)
	}
}

func TestNotifyMissingSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", filepath.Join(t.TempDir(), "absent.sock"))

	if _, err := Notify(Ready); err == nil {
		t.Error("Notify to a missing socket succeeded")
	}
}
