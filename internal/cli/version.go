package cli

import (
	"fmt"

	"github.com/signalgarden/melia/internal"
)

// Represents the 'melia version' command.
type VersionCmd struct{}

// Prints the version string to stdout.
func (c *VersionCmd) Run() error {
	fmt.Println(internal.VersionString())
	return nil
}
