// Package shared provides common CLI flag definitions and utility
// functions used across sirang's command-line interface.
package shared

import (
	"github.com/Icelain/sirang/pkg/config"
	"github.com/urfave/cli/v3"
)

const categoryCommon = "common"

// CertFlag is the name of the flag for the TLS certificate file path.
const CertFlag = "cert"

// DebugFlag is the name of the flag to enable trace-level logging.
const DebugFlag = "debug"

// BufferSizeFlag is the name of the flag for the copy buffer size.
const BufferSizeFlag = "buffer"

// LogFileFlag is the name of the flag for the rotating log file.
const LogFileFlag = "log"

// ConfigFileFlag is the name of the flag for the YAML config file.
const ConfigFileFlag = "config"

// GetCommonFlags returns the CLI flags used by all four agent roles.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     CertFlag,
			Aliases:  []string{"c"},
			Usage:    "Path to the TLS certificate file",
			Category: categoryCommon,
			Required: false,
		},
		&cli.BoolFlag{
			Name:     DebugFlag,
			Aliases:  []string{"d"},
			Usage:    "Enable trace-level logging",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
		&cli.IntFlag{
			Name:     BufferSizeFlag,
			Aliases:  []string{"b"},
			Usage:    "Per-direction copy buffer size in bytes",
			Category: categoryCommon,
			Value:    config.DefaultBufferSize,
			Required: false,
		},
		&cli.StringFlag{
			Name:     LogFileFlag,
			Usage:    "Mirror log messages into a rotating file",
			Category: categoryCommon,
			Required: false,
		},
		&cli.StringFlag{
			Name:     ConfigFileFlag,
			Usage:    "Load defaults from a YAML config file",
			Category: categoryCommon,
			Required: false,
		},
	}
}

const categoryRemote = "remote"

// KeyFlag is the name of the flag for the TLS key file path.
const KeyFlag = "key"

// QUICAddrFlag is the name of the flag for the QUIC server address.
const QUICAddrFlag = "quicaddr"

// GetRemoteFlags returns the CLI flags specific to the remote agent.
func GetRemoteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     KeyFlag,
			Aliases:  []string{"k"},
			Usage:    "Path to the TLS key file",
			Category: categoryRemote,
			Required: false,
		},
		&cli.StringFlag{
			Name:     QUICAddrFlag,
			Aliases:  []string{"q"},
			Usage:    "Address to run the QUIC server on",
			Category: categoryRemote,
			Value:    "0.0.0.0:4433",
			Required: false,
		},
	}
}

// ForwardAddrFlag is the name of the flag for the TCP address forward
// tunnels are bridged to.
const ForwardAddrFlag = "forwardaddr"

// GetForwardRemoteFlags returns the CLI flags specific to the forward
// remote agent.
func GetForwardRemoteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     ForwardAddrFlag,
			Aliases:  []string{"f"},
			Usage:    "TCP address to forward the tunnel to",
			Category: categoryRemote,
			Required: false,
		},
	}
}

// TCPAddrFlag is the name of the flag for the public TCP address of a
// reverse tunnel.
const TCPAddrFlag = "tcpaddr"

// GetReverseRemoteFlags returns the CLI flags specific to the reverse
// remote agent.
func GetReverseRemoteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     TCPAddrFlag,
			Aliases:  []string{"t"},
			Usage:    "Public TCP address clients of the reverse tunnel connect to",
			Category: categoryRemote,
			Value:    "0.0.0.0:5000",
			Required: false,
		},
	}
}

const categoryLocal = "local"

// RemoteAddrFlag is the name of the flag for the remote QUIC address.
const RemoteAddrFlag = "remoteaddr"

// LocalAddrFlag is the name of the flag for the local TCP address.
const LocalAddrFlag = "localaddr"

// GetLocalFlags returns the CLI flags specific to the local agent. The
// default for the local TCP address differs per tunnel type, so it is
// passed in; an empty default leaves the flag without one.
func GetLocalFlags(localAddrDefault string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     RemoteAddrFlag,
			Aliases:  []string{"r"},
			Usage:    "Address of the remote QUIC instance to connect to",
			Category: categoryLocal,
			Required: false,
		},
		&cli.StringFlag{
			Name:     LocalAddrFlag,
			Aliases:  []string{"l"},
			Usage:    "Local TCP address of the tunnel",
			Category: categoryLocal,
			Value:    localAddrDefault,
			Required: false,
		},
	}
}
