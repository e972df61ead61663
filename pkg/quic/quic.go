// Package quic adapts the quic-go transport to the small surface the
// tunnel engines consume: servers that accept sessions, sessions that
// open and accept bidirectional streams, and streams usable as plain
// ReadWriteClosers.
package quic

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/quic-go/quic-go"
)

// alpnProtocol is the ALPN token both ends must offer. There is no
// versioning beyond it; both ends must be the same build.
const alpnProtocol = "sirang-tunnel"

const maxIdleTimeout = 30 * time.Second
const keepAlivePeriod = 10 * time.Second

// Server accepts incoming QUIC sessions.
type Server struct {
	l *quic.Listener
}

// NewServer binds a UDP socket at addr and configures TLS 1.3 with the
// given PEM materials. Malformed PEM and bind failures surface as
// startup errors.
func NewServer(addr string, certPEM, keyPEM []byte) (*Server, error) {
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("tls.X509KeyPair(): %w", err)
	}

	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
		NextProtos:   []string{alpnProtocol},
	}

	l, err := quic.ListenAddr(addr, tlsCfg, &quic.Config{
		MaxIdleTimeout: maxIdleTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("quic.ListenAddr(%s): %w", addr, err)
	}

	return &Server{l: l}, nil
}

// Accept waits for the next incoming session. It returns early when ctx
// is cancelled.
func (s *Server) Accept(ctx context.Context) (*Session, error) {
	conn, err := s.l.Accept(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{conn: conn}, nil
}

// Addr returns the bound UDP address.
func (s *Server) Addr() net.Addr {
	return s.l.Addr()
}

// Close stops the listener. Established sessions are unaffected.
func (s *Server) Close() error {
	return s.l.Close()
}

// Dial binds a wildcard UDP socket and initiates a session to addr. The
// supplied PEM certificate is the sole trust anchor and the TLS server
// name is the literal IP of addr, which is what point-to-point
// certificates in this system are issued for. Keep-alive is enabled on
// the dialing side, making it the liveness mechanism for idle sessions.
func Dial(ctx context.Context, addr string, certPEM []byte) (*Session, error) {
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(certPEM) {
		return nil, fmt.Errorf("no certificate found in PEM data")
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("net.SplitHostPort(%s): %w", addr, err)
	}

	tlsCfg := &tls.Config{
		RootCAs:    pool,
		ServerName: host,
		MinVersion: tls.VersionTLS13,
		NextProtos: []string{alpnProtocol},
	}

	conn, err := quic.DialAddr(ctx, addr, tlsCfg, &quic.Config{
		MaxIdleTimeout:  maxIdleTimeout,
		KeepAlivePeriod: keepAlivePeriod,
	})
	if err != nil {
		return nil, fmt.Errorf("quic.DialAddr(%s): %w", addr, err)
	}

	return &Session{conn: conn}, nil
}

// IsGracefulClose reports whether err results from the peer closing the
// session with the no-error code, as both agents do on teardown.
func IsGracefulClose(err error) bool {
	var appErr *quic.ApplicationError
	return errors.As(err, &appErr) && appErr.ErrorCode == 0
}

// Session is one QUIC connection carrying many bidirectional streams.
type Session struct {
	conn *quic.Conn
}

// OpenStream opens a new bidirectional stream. It blocks until the peer
// permits another stream or ctx is cancelled; once the session has
// failed, it returns an error immediately.
func (s *Session) OpenStream(ctx context.Context) (*Stream, error) {
	qs, err := s.conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, err
	}
	return &Stream{qs: qs}, nil
}

// AcceptStream waits for the peer to open a bidirectional stream. It
// returns early when ctx is cancelled.
func (s *Session) AcceptStream(ctx context.Context) (*Stream, error) {
	qs, err := s.conn.AcceptStream(ctx)
	if err != nil {
		return nil, err
	}
	return &Stream{qs: qs}, nil
}

// RemoteAddr returns the peer's UDP address.
func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Close closes the session and every stream on it.
func (s *Session) Close() error {
	return s.conn.CloseWithError(0, "")
}

// Stream is an ordered, reliable, full-duplex byte channel. Reads and
// writes use independent directions and may run concurrently.
type Stream struct {
	qs *quic.Stream
}

func (s *Stream) Read(p []byte) (int, error) {
	return s.qs.Read(p)
}

func (s *Stream) Write(p []byte) (int, error) {
	return s.qs.Write(p)
}

// Close finishes the send direction and aborts the receive direction, so
// a peer blocked on either half unblocks.
func (s *Stream) Close() error {
	s.qs.CancelRead(0)
	return s.qs.Close()
}
