package shared

import (
	"fmt"

	"github.com/Icelain/sirang/pkg/config"
	"github.com/Icelain/sirang/pkg/log"
	"github.com/urfave/cli/v3"
)

// BuildLocalConfig assembles a local agent configuration from the
// command line and an optional config file. Parse failures carry the
// flag they belong to.
func BuildLocalConfig(cmd *cli.Command, tunnel config.TunnelType) (*config.Local, error) {
	file, err := LoadFileConfig(cmd)
	if err != nil {
		return nil, err
	}

	cfg := &config.Local{
		Tunnel:     tunnel,
		BufferSize: IntValue(cmd, BufferSizeFlag, file.BufferSize),
		Logger:     buildLogger(cmd, file),
	}

	if s := StringValue(cmd, LocalAddrFlag, file.LocalTCPAddr); s != "" {
		cfg.LocalTCPAddr, err = ParseSocketAddr(s)
		if err != nil {
			return nil, fmt.Errorf("'--%s': %w", LocalAddrFlag, err)
		}
	}

	if s := StringValue(cmd, RemoteAddrFlag, file.RemoteQUICAddr); s != "" {
		cfg.RemoteQUICAddr, err = ParseSocketAddr(s)
		if err != nil {
			return nil, fmt.Errorf("'--%s': %w", RemoteAddrFlag, err)
		}
	}

	cfg.TLSCert, err = ReadPEMFile(StringValue(cmd, CertFlag, file.CertFile))
	if err != nil {
		return nil, fmt.Errorf("'--%s': %w", CertFlag, err)
	}

	return cfg, nil
}

// BuildRemoteConfig assembles a remote agent configuration from the
// command line and an optional config file.
func BuildRemoteConfig(cmd *cli.Command, tunnel config.TunnelType) (*config.Remote, error) {
	file, err := LoadFileConfig(cmd)
	if err != nil {
		return nil, err
	}

	cfg := &config.Remote{
		Tunnel:     tunnel,
		BufferSize: IntValue(cmd, BufferSizeFlag, file.BufferSize),
		Logger:     buildLogger(cmd, file),
	}

	if s := StringValue(cmd, QUICAddrFlag, file.QUICAddr); s != "" {
		cfg.QUICAddr, err = ParseSocketAddr(s)
		if err != nil {
			return nil, fmt.Errorf("'--%s': %w", QUICAddrFlag, err)
		}
	}

	switch tunnel {
	case config.TunnelForward:
		if s := StringValue(cmd, ForwardAddrFlag, file.TCPForwardAddr); s != "" {
			cfg.TCPForwardAddr, err = ParseSocketAddr(s)
			if err != nil {
				return nil, fmt.Errorf("'--%s': %w", ForwardAddrFlag, err)
			}
		}
	case config.TunnelReverse:
		if s := StringValue(cmd, TCPAddrFlag, file.TCPReverseAddr); s != "" {
			cfg.TCPReverseAddr, err = ParseSocketAddr(s)
			if err != nil {
				return nil, fmt.Errorf("'--%s': %w", TCPAddrFlag, err)
			}
		}
	}

	cfg.TLSCert, err = ReadPEMFile(StringValue(cmd, CertFlag, file.CertFile))
	if err != nil {
		return nil, fmt.Errorf("'--%s': %w", CertFlag, err)
	}

	cfg.TLSKey, err = ReadPEMFile(StringValue(cmd, KeyFlag, file.KeyFile))
	if err != nil {
		return nil, fmt.Errorf("'--%s': %w", KeyFlag, err)
	}

	return cfg, nil
}

func buildLogger(cmd *cli.Command, file *config.File) *log.Logger {
	logger := log.NewLogger(BoolValue(cmd, DebugFlag, file.Debug))
	if logFile := StringValue(cmd, LogFileFlag, file.LogFile); logFile != "" {
		logger = logger.WithFile(logFile)
	}
	return logger
}
