// Package reverse provides the reverse command, which tunnels TCP
// connections accepted on the remote side back to a service reachable
// from the local side.
package reverse

import (
	"github.com/Icelain/sirang/cmd/reverselocal"
	"github.com/Icelain/sirang/cmd/reverseremote"

	"github.com/urfave/cli/v3"
)

// GetCommand returns the CLI command for reverse tunnels with its
// local and remote subcommands.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "reverse",
		Usage: "Run a reverse tunnel",
		Commands: []*cli.Command{
			reverseremote.GetCommand(),
			reverselocal.GetCommand(),
		},
	}
}
