package config

import (
	"os"

	"github.com/pkg/errors"

	"github.com/signalgarden/melia/internal/paths"
)

// Inputs to [Resolve] that do not come from the filesystem.
type Options struct {

	// Path to the TOML configuration file. Empty means no file.
	File string

	// Command-line directory overrides. Empty fields are not overridden.
	Overrides paths.Directories

	// Command-line directory creation mode. Nil means not given.
	CreateDirectories *DirectoryCreation

	// Listen addresses from the command line, in the order given.
	Addresses []string

	// Environment lookup. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// Per-user directory provider. Defaults to paths.User.
	UserDirs func() paths.Directories
}

func (o *Options) lookupEnv() func(string) (string, bool) {
	if o.LookupEnv != nil {
		return o.LookupEnv
	}
	return os.LookupEnv
}

func (o *Options) userDirs() paths.Directories {
	if o.UserDirs != nil {
		return o.UserDirs()
	}
	return paths.User()
}

// Merges every configuration source into one validated [Config].
//
// The configuration file is read first, then the creation mode is settled
// (override, then file, then [CreateNone]). Directories are resolved, created
// when the mode allows it, and canonicalized. Listen addresses are parsed
// last, because relative Unix socket paths depend on the runtime directory.
//
// The returned error wraps a *[Error] naming the offending path or address.
func Resolve(opts Options) (*Config, error) {
	file := &File{}
	if opts.File != "" {
		f, err := LoadFile(opts.File)
		if err != nil {
			return nil, err
		}
		file = f
	}

	mode := CreateNone
	switch {
	case opts.CreateDirectories != nil:
		mode = *opts.CreateDirectories
	case file.Directories.CreateDirectories != nil:
		mode = *file.Directories.CreateDirectories
	}

	dirs, err := resolveDirectories(&opts, file, mode)
	if err != nil {
		return nil, err
	}

	addresses := make([]string, 0, len(opts.Addresses)+len(file.Listen.Addresses))
	addresses = append(addresses, opts.Addresses...)
	addresses = append(addresses, file.Listen.Addresses...)

	listen, err := resolveListen(addresses, dirs.Runtime)
	if err != nil {
		return nil, errors.WithMessage(err, "listen address")
	}

	return &Config{Directories: dirs, Listen: listen}, nil
}
