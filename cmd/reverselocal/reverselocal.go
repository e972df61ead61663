// Package reverselocal implements the reverse local command: the agent
// behind the NAT that exposes a local service through the remote.
package reverselocal

import (
	"context"
	"fmt"

	"github.com/Icelain/sirang/cmd/shared"
	"github.com/Icelain/sirang/pkg/config"
	"github.com/Icelain/sirang/pkg/entrypoint"
	"github.com/urfave/cli/v3"
)

// GetCommand returns the CLI command for the reverse tunnel's local
// agent.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "local",
		Usage: "Run the local end of a reverse tunnel",
		Action: func(parent context.Context, cmd *cli.Command) error {
			ctx, cancel := context.WithCancel(parent)
			defer cancel()

			shared.SetupSignalHandling(cancel)

			cfg, err := shared.BuildLocalConfig(cmd, config.TunnelReverse)
			if err != nil {
				return err
			}

			if errs := config.Validate(cfg); len(errs) > 0 {
				for _, err := range errs {
					cfg.Logger.ErrorMsg("%s", err)
				}
				return fmt.Errorf("invalid arguments")
			}

			return entrypoint.ReverseLocal(ctx, cfg)
		},
		Flags: getFlags(),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)

	// No default here: the reverse tunnel must name the service it
	// exposes explicitly.
	flags = append(flags, shared.GetLocalFlags("")...)

	return flags
}
