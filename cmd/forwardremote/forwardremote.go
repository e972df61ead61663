// Package forwardremote implements the forward remote command: the QUIC
// server that bridges tunneled streams to the forward target.
package forwardremote

import (
	"context"
	"fmt"

	"github.com/Icelain/sirang/cmd/shared"
	"github.com/Icelain/sirang/pkg/config"
	"github.com/Icelain/sirang/pkg/entrypoint"
	"github.com/urfave/cli/v3"
)

// GetCommand returns the CLI command for the forward tunnel's remote
// agent.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "Run the remote end of a forward tunnel",
		Action: func(parent context.Context, cmd *cli.Command) error {
			ctx, cancel := context.WithCancel(parent)
			defer cancel()

			shared.SetupSignalHandling(cancel)

			cfg, err := shared.BuildRemoteConfig(cmd, config.TunnelForward)
			if err != nil {
				return err
			}

			if errs := config.Validate(cfg); len(errs) > 0 {
				for _, err := range errs {
					cfg.Logger.ErrorMsg("%s", err)
				}
				return fmt.Errorf("invalid arguments")
			}

			return entrypoint.ForwardRemote(ctx, cfg)
		},
		Flags: getFlags(),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetRemoteFlags()...)
	flags = append(flags, shared.GetForwardRemoteFlags()...)

	return flags
}
