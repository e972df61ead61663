// Package main is the entry point for sirang, a bidirectional
// TCP-over-QUIC tunnel.
package main

import (
	"context"
	"os"

	"github.com/Icelain/sirang/cmd/cert"
	"github.com/Icelain/sirang/cmd/forward"
	"github.com/Icelain/sirang/cmd/reverse"
	"github.com/Icelain/sirang/cmd/version"
	"github.com/Icelain/sirang/pkg/log"
	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:        "sirang",
		Description: "fast TCP tunneling over QUIC",
		Commands: []*cli.Command{
			forward.GetCommand(),
			reverse.GetCommand(),
			cert.GetCommand(),
			version.GetCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger := log.NewLogger(false)
		logger.ErrorMsg("Run: %s\n", err)
		os.Exit(1)
	}
}
