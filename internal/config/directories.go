package config

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/signalgarden/melia/internal/paths"
)

// One directory class and the candidate value each source offers for it.
type candidates struct {
	class    string
	override string
	file     string
	env      string
	user     string
	system   string
}

// Picks the value of the highest-priority source that offers one, and names
// that source.
//
// Sources are consulted in the order override, file, env, user, system. The
// first non-empty value wins and nothing is merged across sources.
func (c candidates) pick() (value, source string) {
	sources := [...]struct{ value, name string }{
		{c.override, "command line"},
		{c.file, "configuration file"},
		{c.env, "environment"},
		{c.user, "user directory"},
		{c.system, "system default"},
	}
	for _, s := range sources {
		if s.value != "" {
			return s.value, s.name
		}
	}
	return "", ""
}

// Reads a systemd directory variable. The service manager joins several
// directories with ':' when a unit lists more than one; only the first is used.
func lookupDirectory(lookup func(string) (string, bool), name string) string {
	v, ok := lookup(name)
	if !ok {
		return ""
	}
	first, _, _ := strings.Cut(v, ":")
	return first
}

// Resolves every directory class in a fixed order: runtime, state, cache,
// logs, configuration. The first failure stops resolution.
func resolveDirectories(opts *Options, file *File, mode DirectoryCreation) (Directories, error) {
	lookup := opts.lookupEnv()
	user := opts.userDirs()
	system := paths.System()
	fd := file.Directories

	dirs := Directories{CreateDirectories: mode}
	classes := []struct {
		c   candidates
		dst *string
	}{
		{candidates{"runtime", opts.Overrides.Runtime, fd.Runtime, lookupDirectory(lookup, "RUNTIME_DIRECTORY"), user.Runtime, system.Runtime}, &dirs.Runtime},
		{candidates{"state", opts.Overrides.State, fd.State, lookupDirectory(lookup, "STATE_DIRECTORY"), user.State, system.State}, &dirs.State},
		{candidates{"cache", opts.Overrides.Cache, fd.Cache, lookupDirectory(lookup, "CACHE_DIRECTORY"), user.Cache, system.Cache}, &dirs.Cache},
		{candidates{"logs", opts.Overrides.Logs, fd.Logs, lookupDirectory(lookup, "LOGS_DIRECTORY"), user.Logs, system.Logs}, &dirs.Logs},
		{candidates{"configuration", opts.Overrides.Configuration, fd.Configuration, lookupDirectory(lookup, "CONFIGURATION_DIRECTORY"), user.Configuration, system.Configuration}, &dirs.Configuration},
	}

	for _, cl := range classes {
		path, source := cl.c.pick()
		slog.Debug("directory selected", "class", cl.c.class, "path", path, "source", source)
		dir, err := prepareDirectory(path, mode)
		if err != nil {
			return Directories{}, errors.WithMessagef(err, "%s directory", cl.c.class)
		}
		*cl.dst = dir
	}
	return dirs, nil
}

// Creates the directory if the mode asks for it, then returns its canonical
// absolute path. The directory must exist afterwards.
func prepareDirectory(path string, mode DirectoryCreation) (string, error) {
	if path == "" {
		return "", newError(path, ErrAccess, fs.ErrNotExist)
	}
	if err := createDirectory(path, mode); err != nil {
		return "", err
	}
	return canonicalize(path)
}

// Creates path according to mode. An existing directory is not an error, so
// repeated calls leave the filesystem unchanged.
func createDirectory(path string, mode DirectoryCreation) error {
	var err error
	switch mode {
	case CreateNonRecursive:
		err = os.Mkdir(path, paths.DefaultDirMode)
	case CreateRecursive:
		err = os.MkdirAll(path, paths.DefaultDirMode)
	default:
		return nil
	}
	if err != nil && !errors.Is(err, fs.ErrExist) {
		return newError(path, ErrAccess, err)
	}
	return nil
}

// Returns the absolute path of an existing directory with every symlink
// resolved.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", newError(path, ErrAccess, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", newError(path, ErrAccess, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", newError(path, ErrAccess, err)
	}
	if !info.IsDir() {
		return "", newError(path, ErrAccess, errors.New("not a directory"))
	}
	return resolved, nil
}
