package internal

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Name of the daemon, used for the binary, directories, and log groups.
const Name = "melia"

// Set with -ldflags "-X github.com/signalgarden/melia/internal.version=...".
var (
	version   = ""
	gitCommit = ""

	rawQuiet = "false" // Whether to default to warnings only
	rawDebug = "false" // Whether to default to debug logging
)

// Returns a version string such as "melia 1.4.0 3f2a9c1 [amd64]".
//
// Without linker flags the module version from the build info is used, which
// covers "go install". Development builds report "melia (devel)".
func VersionString() string {
	v, commit := strings.TrimSpace(version), strings.TrimSpace(gitCommit)
	if v == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	if v == "" {
		return Name + " (devel)"
	}

	s := Name + " " + strings.TrimPrefix(v, "v")
	if commit != "" {
		s += " " + commit
	}
	return fmt.Sprintf("%s [%s]", s, runtime.GOARCH)
}
