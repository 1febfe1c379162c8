package paths

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	daemonName = "melia"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// One location per directory class the daemon manages.
//
// An empty field means the location could not be determined.
type Directories struct {
	Runtime       string // Sockets and PID files; wiped on reboot.
	State         string // Persistent data owned by the daemon.
	Cache         string // Data that may be discarded at any time.
	Logs          string // Log files.
	Configuration string // Configuration files.
}

var user = sync.OnceValue(discoverUser)

// Per-user project directories.
//
//	Linux:   $XDG_RUNTIME_DIR/melia, $XDG_STATE_HOME/melia, $XDG_CACHE_HOME/melia, $XDG_CONFIG_HOME/melia
//	macOS:   ~/Library/Application Support/melia and friends
//
// There is no per-user convention for log files, so Logs is always empty.
// The lookup happens once per process.
func User() Directories {
	return user()
}

// Reads the XDG base directories and appends the daemon name.
func discoverUser() Directories {
	join := func(base string) string {
		if base == "" {
			return ""
		}
		return filepath.Join(base, daemonName)
	}
	return Directories{
		Runtime:       join(xdg.RuntimeDir),
		State:         join(xdg.StateHome),
		Cache:         join(xdg.CacheHome),
		Configuration: join(xdg.ConfigHome),
	}
}

// Directories systemd assigns to system services.
//
//	RuntimeDirectory=        /run/melia
//	StateDirectory=          /var/lib/melia
//	CacheDirectory=          /var/cache/melia
//	LogsDirectory=           /var/log/melia
//	ConfigurationDirectory=  /etc/melia
func System() Directories {
	return Directories{
		Runtime:       filepath.Join("/run", daemonName),
		State:         filepath.Join("/var/lib", daemonName),
		Cache:         filepath.Join("/var/cache", daemonName),
		Logs:          filepath.Join("/var/log", daemonName),
		Configuration: filepath.Join("/etc", daemonName),
	}
}

// Path to the PID file inside the given runtime directory.
func PIDFile(runtimeDir string) string {
	return filepath.Join(runtimeDir, daemonName+".pid")
}

