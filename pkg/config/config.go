// Package config defines configuration structures and validation logic
// for the sirang tunnel agents: tunnel type selection, local and remote
// agent settings, and injectable dependencies for testing.
package config

import (
	"fmt"
	"net/netip"

	"github.com/Icelain/sirang/pkg/log"
)

// TunnelType selects the direction of the tunnel.
type TunnelType int

// Tunnel type constants.
const (
	// TunnelForward carries connections accepted on the local side to a
	// service reachable from the remote.
	TunnelForward TunnelType = iota + 1
	// TunnelReverse carries connections accepted on the remote side to a
	// service reachable from the local.
	TunnelReverse
)

// String returns the string representation of the TunnelType.
func (t TunnelType) String() string {
	switch t {
	case TunnelForward:
		return "forward"
	case TunnelReverse:
		return "reverse"
	default:
		return ""
	}
}

// DefaultBufferSize is the per-direction copy buffer size in bytes.
const DefaultBufferSize = 32 * 1024

// Local contains the configuration of the local agent, the side that
// initiates the QUIC session.
type Local struct {
	Tunnel         TunnelType
	LocalTCPAddr   netip.AddrPort
	RemoteQUICAddr netip.AddrPort
	TLSCert        string // PEM text
	BufferSize     int
	Logger         *log.Logger
	Deps           *Dependencies
}

// Validate checks the Local configuration for errors.
// It returns a slice of validation errors, or an empty slice if valid.
func (c *Local) Validate() []error {
	var errs []error

	if c.Tunnel != TunnelForward && c.Tunnel != TunnelReverse {
		errs = append(errs, fmt.Errorf("tunnel type must be forward or reverse"))
	}
	if !c.LocalTCPAddr.IsValid() {
		errs = append(errs, fmt.Errorf("'--localaddr': missing or invalid local TCP address"))
	}
	if !c.RemoteQUICAddr.IsValid() {
		errs = append(errs, fmt.Errorf("'--remoteaddr': missing or invalid remote QUIC address"))
	}
	if c.TLSCert == "" {
		errs = append(errs, fmt.Errorf("'--cert': missing TLS certificate"))
	}
	if c.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("'--buffer': buffer size must be positive"))
	}

	return errs
}

// Remote contains the configuration of the remote agent, the side that
// runs the QUIC server.
type Remote struct {
	Tunnel TunnelType

	// TCPForwardAddr is the tunnel target, used by forward tunnels only.
	TCPForwardAddr netip.AddrPort

	// TCPReverseAddr is the public ingress, used by reverse tunnels only.
	TCPReverseAddr netip.AddrPort

	QUICAddr   netip.AddrPort
	TLSCert    string // PEM text
	TLSKey     string // PEM text
	BufferSize int
	Logger     *log.Logger
	Deps       *Dependencies
}

// Validate checks the Remote configuration for errors.
// It returns a slice of validation errors, or an empty slice if valid.
func (c *Remote) Validate() []error {
	var errs []error

	switch c.Tunnel {
	case TunnelForward:
		if !c.TCPForwardAddr.IsValid() {
			errs = append(errs, fmt.Errorf("'--forwardaddr': missing or invalid TCP forward address"))
		}
	case TunnelReverse:
		if !c.TCPReverseAddr.IsValid() {
			errs = append(errs, fmt.Errorf("'--tcpaddr': missing or invalid TCP reverse address"))
		}
	default:
		errs = append(errs, fmt.Errorf("tunnel type must be forward or reverse"))
	}

	if !c.QUICAddr.IsValid() {
		errs = append(errs, fmt.Errorf("'--quicaddr': missing or invalid QUIC address"))
	}
	if c.TLSCert == "" {
		errs = append(errs, fmt.Errorf("'--cert': missing TLS certificate"))
	}
	if c.TLSKey == "" {
		errs = append(errs, fmt.Errorf("'--key': missing TLS key"))
	}
	if c.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("'--buffer': buffer size must be positive"))
	}

	return errs
}
