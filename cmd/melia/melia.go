package main

import (
	"log/slog"
	"os"

	"github.com/signalgarden/melia/internal"
	"github.com/signalgarden/melia/internal/cli"
)

// The entry point for the melia daemon.
//
// Installs a logger seeded from build-time defaults, then parses the command
// line and runs the selected command. Any error ends the process with a
// non-zero exit code.
func main() {
	slog.SetDefault(cli.DefaultLogger())

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("starting",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
