// Package reverse implements both halves of the reverse tunnel. The
// remote publishes a TCP listener and pushes every accepted connection
// back to the local agent over its own QUIC stream; a dedicated control
// stream, the first one opened on the session, coordinates the handshake
// and graceful teardown with CONNECTED, CLOSED and ACK commands.
package reverse

import (
	"net"
	"net/netip"
)

// commandBufferSize bounds a control frame read. Frames are short ASCII
// commands, far below this.
const commandBufferSize = 256

// closeAction tells a waiting loop how far to unwind.
type closeAction int

const (
	// closeProcess winds the whole agent down.
	closeProcess closeAction = iota + 1
	// closeStream releases the current reverse client only; the session
	// loop starts over and accepts the next one.
	closeStream
)

// pushAction delivers an action without blocking. Every waiting loop
// treats receipt as idempotent, so a full channel means the signal is
// already pending.
func pushAction(ch chan<- closeAction, a closeAction) {
	select {
	case ch <- a:
	default:
	}
}

// addrPortOf extracts the IP and port of a TCP or UDP net.Addr.
func addrPortOf(addr net.Addr) (netip.AddrPort, bool) {
	switch a := addr.(type) {
	case *net.TCPAddr:
		return a.AddrPort(), true
	case *net.UDPAddr:
		return a.AddrPort(), true
	default:
		return netip.AddrPort{}, false
	}
}
