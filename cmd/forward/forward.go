// Package forward provides the forward command, which tunnels TCP
// connections accepted on the local side to a service reachable from the
// remote.
package forward

import (
	"github.com/Icelain/sirang/cmd/forwardlocal"
	"github.com/Icelain/sirang/cmd/forwardremote"

	"github.com/urfave/cli/v3"
)

// GetCommand returns the CLI command for forward tunnels with its
// local and remote subcommands.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "forward",
		Usage: "Run a forward tunnel",
		Commands: []*cli.Command{
			forwardremote.GetCommand(),
			forwardlocal.GetCommand(),
		},
	}
}
