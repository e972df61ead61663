// Package forwardlocal implements the forward local command: the agent
// that accepts TCP connections and carries them to the remote over QUIC.
package forwardlocal

import (
	"context"
	"fmt"

	"github.com/Icelain/sirang/cmd/shared"
	"github.com/Icelain/sirang/pkg/config"
	"github.com/Icelain/sirang/pkg/entrypoint"
	"github.com/urfave/cli/v3"
)

// GetCommand returns the CLI command for the forward tunnel's local
// agent.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "local",
		Usage: "Run the local end of a forward tunnel",
		Action: func(parent context.Context, cmd *cli.Command) error {
			ctx, cancel := context.WithCancel(parent)
			defer cancel()

			shared.SetupSignalHandling(cancel)

			cfg, err := shared.BuildLocalConfig(cmd, config.TunnelForward)
			if err != nil {
				return err
			}

			if errs := config.Validate(cfg); len(errs) > 0 {
				for _, err := range errs {
					cfg.Logger.ErrorMsg("%s", err)
				}
				return fmt.Errorf("invalid arguments")
			}

			return entrypoint.ForwardLocal(ctx, cfg)
		},
		Flags: getFlags(),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetLocalFlags("127.0.0.1:8080")...)

	return flags
}
