package cli

import (
	"context"
	"log/slog"

	"github.com/signalgarden/melia/internal/activation"
	"github.com/signalgarden/melia/internal/config"
	"github.com/signalgarden/melia/internal/listener"
	"github.com/signalgarden/melia/internal/server"
)

// Represents the 'melia daemon' command.
type DaemonCmd struct {
	Address []string `short:"a" name:"address" sep:"none" help:"Listen address URL; repeatable. http://IP[:PORT], https://IP[:PORT], or unix:PATH[?user=U,group=G,mode=M]." placeholder:"URL"`
}

// Executes the daemon command.
//
// Resolves the configuration, takes over inherited sockets, opens the
// configured listeners, and serves until the context is cancelled (e.g. via
// SIGINT or SIGTERM).
func (c *DaemonCmd) Run(ctx context.Context) error {
	opts, err := RootCmd.resolveOptions(c.Address)
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(opts)
	if err != nil {
		return err
	}
	slog.Debug("configuration resolved",
		"runtime", cfg.Directories.Runtime,
		"state", cfg.Directories.State,
		"cache", cfg.Directories.Cache,
		"logs", cfg.Directories.Logs,
		"configuration", cfg.Directories.Configuration,
	)

	sockets, err := activation.Collect()
	if err != nil {
		return err
	}
	for _, s := range sockets {
		slog.Debug("inherited socket", "socket", s.String())
	}

	shared := config.NewShared(cfg)
	ds, err := listener.Open(ctx, sockets, shared)
	if err != nil {
		return err
	}

	slog.Info("melia is running")
	return server.New(shared).Run(ctx, ds)
}
