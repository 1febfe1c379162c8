package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/signalgarden/melia/internal"
	"github.com/signalgarden/melia/internal/config"
	"github.com/signalgarden/melia/internal/paths"
)

// Represents the root command for the melia daemon.
type Root struct {
	LogFilter  string `name:"log-filter" env:"MELIA_LOG_FILTER" default:"${log_filter}" help:"Log filter, e.g. \"warn,melia=debug\"." placeholder:"FILTER"`
	LogFormat  string `name:"log-format" enum:"compact,full,pretty,json" default:"pretty" help:"Log output format (${enum})."`
	RuntimeDir string `name:"runtime-dir" type:"path" help:"Runtime directory (sockets, PID file)." placeholder:"DIR"`
	StateDir   string `name:"state-dir" type:"path" help:"State directory." placeholder:"DIR"`
	CacheDir   string `name:"cache-dir" type:"path" help:"Cache directory." placeholder:"DIR"`
	LogsDir    string `name:"logs-dir" type:"path" help:"Logs directory." placeholder:"DIR"`
	ConfigDir  string `name:"config-dir" type:"path" help:"Configuration directory." placeholder:"DIR"`
	CreateDirs string `name:"create-dirs" help:"Create missing directories: no, non-recursive, or recursive." placeholder:"MODE"`
	Config     string `short:"c" name:"config" env:"MELIA_CONFIG" type:"path" help:"Configuration file." placeholder:"FILE"`

	Daemon  DaemonCmd  `cmd:"" default:"withargs" help:"Run the daemon (default)."`
	Ctl     CtlCmd     `cmd:"" help:"Control a running daemon."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parsed command line.
var RootCmd Root

// Kong options shared by Execute and tests.
func parserOptions() []kong.Option {
	return []kong.Option{
		kong.Name(internal.Name),
		kong.Description("A socket-activated multi-protocol daemon.\n\nServes HTTP on TCP and Unix domain sockets, either inherited from the service manager or bound from its configuration."),
		kong.UsageOnError(),
		kong.Vars{
			"version":    internal.VersionString(),
			"log_filter": internal.DefaultLogFilter(),
		},
	}
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := append(parserOptions(), kong.BindTo(ctx, (*context.Context)(nil)))
	kongCtx := kong.Parse(&RootCmd, opts...)

	if err := configureLogger(RootCmd.LogFilter, RootCmd.LogFormat); err != nil {
		return err
	}

	return kongCtx.Run()
}

// Options for config.Resolve built from the global flags.
func (r *Root) resolveOptions(addresses []string) (config.Options, error) {
	opts := config.Options{
		File: r.Config,
		Overrides: paths.Directories{
			Runtime:       r.RuntimeDir,
			State:         r.StateDir,
			Cache:         r.CacheDir,
			Logs:          r.LogsDir,
			Configuration: r.ConfigDir,
		},
		Addresses: addresses,
	}
	if r.CreateDirs != "" {
		mode, err := config.ParseDirectoryCreation(r.CreateDirs)
		if err != nil {
			return config.Options{}, err
		}
		opts.CreateDirectories = &mode
	}
	return opts, nil
}
