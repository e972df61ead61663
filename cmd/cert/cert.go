// Package cert provides the cert command, which generates the
// self-signed certificate pair a tunnel deployment needs.
package cert

import (
	"context"
	"fmt"

	"github.com/Icelain/sirang/pkg/crypto"
	"github.com/urfave/cli/v3"
)

// OutputFlag is the name of the flag for the output directory.
const OutputFlag = "output"

// HostFlag is the name of the flag for the certificate's IP addresses.
const HostFlag = "host"

// GetCommand returns the CLI command for generating a certificate pair.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "cert",
		Usage: "Generate a self-signed certificate for the tunnel endpoints",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			certPEM, keyPEM, err := crypto.GeneratePair(cmd.StringSlice(HostFlag))
			if err != nil {
				return fmt.Errorf("generating certificate: %w", err)
			}

			certPath, keyPath, err := crypto.WritePair(cmd.String(OutputFlag), certPEM, keyPEM)
			if err != nil {
				return err
			}

			fmt.Printf("Certificate written to %s\nKey written to %s\n", certPath, keyPath)
			return nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     OutputFlag,
				Aliases:  []string{"o"},
				Usage:    "Directory to write cert.pem and key.pem to",
				Value:    ".",
				Required: false,
			},
			&cli.StringSliceFlag{
				Name:     HostFlag,
				Usage:    "IP address the remote is reached at, repeatable",
				Value:    []string{"127.0.0.1", "::1"},
				Required: false,
			},
		},
	}
}
