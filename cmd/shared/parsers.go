package shared

import (
	"fmt"
	"net/netip"
	"os"

	"github.com/Icelain/sirang/pkg/config"
	"github.com/urfave/cli/v3"
)

// ParseSocketAddr parses a strict ip:port literal, IPv4 or bracketed
// IPv6.
func ParseSocketAddr(s string) (netip.AddrPort, error) {
	addr, err := netip.ParseAddrPort(s)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("parsing %s: format should be 'ip:port', e.g. 127.0.0.1:8080 or [::1]:8080", s)
	}

	return addr, nil
}

// ReadPEMFile loads a PEM file, rejecting missing paths with a clear
// message before any network activity happens.
func ReadPEMFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no file provided")
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file %s doesn't exist", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	return string(data), nil
}

// LoadFileConfig loads the YAML config file named by the --config flag,
// or an empty config when the flag is unset.
func LoadFileConfig(cmd *cli.Command) (*config.File, error) {
	path := cmd.String(ConfigFileFlag)
	if path == "" {
		return &config.File{}, nil
	}

	return config.LoadFile(path)
}

// StringValue returns the flag's value, falling back to the config-file
// value when the flag was not set on the command line.
func StringValue(cmd *cli.Command, name, fileValue string) string {
	if cmd.IsSet(name) || fileValue == "" {
		return cmd.String(name)
	}
	return fileValue
}

// IntValue returns the flag's value, falling back to the config-file
// value when the flag was not set on the command line.
func IntValue(cmd *cli.Command, name string, fileValue int) int {
	if cmd.IsSet(name) || fileValue == 0 {
		return int(cmd.Int(name))
	}
	return fileValue
}

// BoolValue returns the flag's value, falling back to the config-file
// value when the flag was not set on the command line.
func BoolValue(cmd *cli.Command, name string, fileValue bool) bool {
	if cmd.IsSet(name) || !fileValue {
		return cmd.Bool(name)
	}
	return true
}
