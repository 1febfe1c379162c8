package config

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"slices"
	"strconv"
	"strings"
)

// Controls whether missing directories are created during resolution.
type DirectoryCreation int

const (
	CreateNone         DirectoryCreation = iota // Never create; missing directories are fatal.
	CreateNonRecursive                          // Create only the leaf; the parent must exist.
	CreateRecursive                             // Create the leaf and every missing parent.
)

var creationNames = [...]string{
	CreateNone:         "no",
	CreateNonRecursive: "non-recursive",
	CreateRecursive:    "recursive",
}

// String implements fmt.Stringer.
func (d DirectoryCreation) String() string {
	if d < 0 || int(d) >= len(creationNames) {
		return "DirectoryCreation(" + strconv.Itoa(int(d)) + ")"
	}
	return creationNames[d]
}

// MarshalText implements encoding.TextMarshaler.
func (d DirectoryCreation) MarshalText() ([]byte, error) {
	if d < 0 || int(d) >= len(creationNames) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(d))
	}
	return []byte(creationNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DirectoryCreation) UnmarshalText(text []byte) error {
	mode, err := ParseDirectoryCreation(string(text))
	if err != nil {
		return err
	}
	*d = mode
	return nil
}

// Parses one of "no", "non-recursive", or "recursive".
func ParseDirectoryCreation(s string) (DirectoryCreation, error) {
	for i, name := range creationNames {
		if strings.EqualFold(s, name) {
			return DirectoryCreation(i), nil
		}
	}
	return CreateNone, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Fully resolved daemon configuration.
//
// Directory paths are absolute and refer to existing directories. The listen
// buckets are in resolution order: command line first, then the configuration
// file, then whatever the service manager passed in.
type Config struct {
	Directories Directories `json:"directories" toml:"directories"`
	Listen      Listen      `json:"listen" toml:"listen"`
}

// Resolved directory set.
type Directories struct {
	CreateDirectories DirectoryCreation `json:"create_directories" toml:"create_directories"`
	Runtime           string            `json:"runtime" toml:"runtime"`
	State             string            `json:"state" toml:"state"`
	Cache             string            `json:"cache" toml:"cache"`
	Logs              string            `json:"logs" toml:"logs"`
	Configuration     string            `json:"configuration" toml:"configuration"`
}

// Addresses the daemon serves, grouped by protocol.
type Listen struct {
	HTTP  []netip.AddrPort `json:"http" toml:"http"`
	HTTPS []netip.AddrPort `json:"https" toml:"https"`
	Unix  []UnixAddress    `json:"unix" toml:"unix"`
}

// MarshalJSON implements json.Marshaler. Empty buckets encode as [].
func (l Listen) MarshalJSON() ([]byte, error) {
	type plain Listen
	out := plain(l)
	if out.HTTP == nil {
		out.HTTP = []netip.AddrPort{}
	}
	if out.HTTPS == nil {
		out.HTTPS = []netip.AddrPort{}
	}
	if out.Unix == nil {
		out.Unix = []UnixAddress{}
	}
	return json.Marshal(out)
}

// Unix domain socket to bind, plus the ownership and mode applied after
// binding. Empty User and Group leave ownership alone; a nil Mode leaves the
// permissions the umask produced.
type UnixAddress struct {
	Path  string `json:"path" toml:"path"`
	User  string `json:"user,omitempty" toml:"user,omitempty"`
	Group string `json:"group,omitempty" toml:"group,omitempty"`
	Mode  *Mode  `json:"mode,omitempty" toml:"mode,omitempty"`
}

// Permission bits for a Unix socket file, rendered in octal.
type Mode uint32

// Returns a pointer to a copy of m.
func (m Mode) Ptr() *Mode { return &m }

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%04o", uint32(m))), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := parseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func parseMode(s string) (Mode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil || v > 0o7777 {
		return 0, fmt.Errorf("%w: mode %q is not an octal permission", ErrInvalidParameter, s)
	}
	return Mode(v), nil
}

// Returns a deep copy that shares no slices with c.
func (c *Config) Clone() *Config {
	out := *c
	out.Listen.HTTP = slices.Clone(c.Listen.HTTP)
	out.Listen.HTTPS = slices.Clone(c.Listen.HTTPS)
	out.Listen.Unix = slices.Clone(c.Listen.Unix)
	for i, ua := range out.Listen.Unix {
		if ua.Mode != nil {
			out.Listen.Unix[i].Mode = ua.Mode.Ptr()
		}
	}
	return &out
}
