// Package reverseremote implements the reverse remote command: the
// publicly reachable end of a reverse tunnel.
package reverseremote

import (
	"context"
	"fmt"

	"github.com/Icelain/sirang/cmd/shared"
	"github.com/Icelain/sirang/pkg/config"
	"github.com/Icelain/sirang/pkg/entrypoint"
	"github.com/urfave/cli/v3"
)

// GetCommand returns the CLI command for the reverse tunnel's remote
// agent.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "Run the remote end of a reverse tunnel",
		Action: func(parent context.Context, cmd *cli.Command) error {
			ctx, cancel := context.WithCancel(parent)
			defer cancel()

			shared.SetupSignalHandling(cancel)

			cfg, err := shared.BuildRemoteConfig(cmd, config.TunnelReverse)
			if err != nil {
				return err
			}

			if errs := config.Validate(cfg); len(errs) > 0 {
				for _, err := range errs {
					cfg.Logger.ErrorMsg("%s", err)
				}
				return fmt.Errorf("invalid arguments")
			}

			return entrypoint.ReverseRemote(ctx, cfg)
		},
		Flags: getFlags(),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetRemoteFlags()...)
	flags = append(flags, shared.GetReverseRemoteFlags()...)

	return flags
}
