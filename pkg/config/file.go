package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File mirrors the CLI flags of one agent role, so deployments can keep
// their settings in a YAML file instead of a shell history. Flags set
// explicitly on the command line take precedence over file values.
type File struct {
	LocalTCPAddr   string `yaml:"localaddr,omitempty"`
	RemoteQUICAddr string `yaml:"remoteaddr,omitempty"`
	QUICAddr       string `yaml:"quicaddr,omitempty"`
	TCPForwardAddr string `yaml:"forwardaddr,omitempty"`
	TCPReverseAddr string `yaml:"tcpaddr,omitempty"`
	CertFile       string `yaml:"cert,omitempty"`
	KeyFile        string `yaml:"key,omitempty"`
	BufferSize     int    `yaml:"buffer,omitempty"`
	LogFile        string `yaml:"log,omitempty"`
	Debug          bool   `yaml:"debug,omitempty"`
}

// LoadFile loads an agent config file from a YAML file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return &f, nil
}
