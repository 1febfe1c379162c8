package cli

import (
	"context"
	"os"

	"github.com/signalgarden/melia/internal/ctl"
)

// Represents the 'melia ctl' command.
type CtlCmd struct {
	Socket   string      `env:"MELIA_CTL_SOCKET" required:"" type:"path" help:"Control socket of the running daemon." placeholder:"PATH"`
	PrintCfg PrintCfgCmd `cmd:"" name:"print-cfg" default:"1" help:"Print the daemon's effective configuration (default)."`
}

// Represents the 'melia ctl print-cfg' command.
type PrintCfgCmd struct{}

// Executes the print-cfg command.
func (c *PrintCfgCmd) Run(ctx context.Context) error {
	return ctl.Dial(RootCmd.Ctl.Socket).PrintConfig(ctx, os.Stdout)
}
