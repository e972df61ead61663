package forward

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/Icelain/sirang/pkg/config"
	"github.com/Icelain/sirang/pkg/crypto"
	"github.com/Icelain/sirang/pkg/log"
	"github.com/Icelain/sirang/pkg/quic"
	"golang.org/x/sync/errgroup"
)

// startEchoServer starts a TCP echo server on an ephemeral loopback
// port. Connections already accepted keep echoing after the listener is
// closed.
func startEchoServer(t *testing.T) net.Listener {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("starting echo server: %s", err)
	}

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				io.Copy(c, c)
			}(conn)
		}
	}()

	return l
}

func tcpAddrPort(t *testing.T, addr net.Addr) netip.AddrPort {
	t.Helper()

	ta, ok := addr.(*net.TCPAddr)
	if !ok {
		t.Fatalf("addr = %T but want *net.TCPAddr", addr)
	}
	return ta.AddrPort()
}

// startForwardTunnel wires up a complete forward tunnel against the
// given target and returns the local TCP address clients connect to.
func startForwardTunnel(t *testing.T, ctx context.Context, target netip.AddrPort) string {
	t.Helper()

	certPEM, keyPEM, err := crypto.GeneratePair([]string{"127.0.0.1"})
	if err != nil {
		t.Fatalf("crypto.GeneratePair(): %s", err)
	}

	srv, err := quic.NewServer("127.0.0.1:0", certPEM, keyPEM)
	if err != nil {
		t.Fatalf("quic.NewServer(): %s", err)
	}
	t.Cleanup(func() { srv.Close() })

	remoteCfg := &config.Remote{
		Tunnel:         config.TunnelForward,
		TCPForwardAddr: target,
		TLSCert:        string(certPEM),
		TLSKey:         string(keyPEM),
		BufferSize:     config.DefaultBufferSize,
		Logger:         log.NewLogger(false),
	}
	go NewRemote(ctx, remoteCfg, srv).Run()

	sess, err := quic.Dial(ctx, srv.Addr().String(), certPEM)
	if err != nil {
		t.Fatalf("quic.Dial(): %s", err)
	}
	t.Cleanup(func() { sess.Close() })

	listenerCh := make(chan net.Listener, 1)
	localCfg := &config.Local{
		Tunnel:         config.TunnelForward,
		LocalTCPAddr:   netip.MustParseAddrPort("127.0.0.1:0"),
		RemoteQUICAddr: tcpAddrPortOfUDP(t, srv.Addr()),
		TLSCert:        string(certPEM),
		BufferSize:     config.DefaultBufferSize,
		Logger:         log.NewLogger(false),
		Deps: &config.Dependencies{
			TCPListener: func(addr string) (net.Listener, error) {
				l, err := net.Listen("tcp", addr)
				if err == nil {
					listenerCh <- l
				}
				return l, err
			},
		},
	}
	go NewLocal(ctx, localCfg, sess).Run()

	select {
	case l := <-listenerCh:
		return l.Addr().String()
	case <-time.After(5 * time.Second):
		t.Fatal("local listener did not come up")
		return ""
	}
}

func tcpAddrPortOfUDP(t *testing.T, addr net.Addr) netip.AddrPort {
	t.Helper()

	ua, ok := addr.(*net.UDPAddr)
	if !ok {
		t.Fatalf("addr = %T but want *net.UDPAddr", addr)
	}
	return ua.AddrPort()
}

// roundTrip sends the payload and expects it echoed back on the same
// connection.
func roundTrip(conn net.Conn, payload string) error {
	if err := conn.SetDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return err
	}

	if _, err := conn.Write([]byte(payload)); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	buf := make([]byte, len(payload))
	if _, err := io.ReadFull(conn, buf); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if string(buf) != payload {
		return fmt.Errorf("echoed %q but want %q", buf, payload)
	}

	return nil
}

func TestForwardTunnelEcho(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	echo := startEchoServer(t)
	defer echo.Close()

	localAddr := startForwardTunnel(t, ctx, tcpAddrPort(t, echo.Addr()))

	conn, err := net.Dial("tcp", localAddr)
	if err != nil {
		t.Fatalf("dialing tunnel: %s", err)
	}
	defer conn.Close()

	if err := roundTrip(conn, "PING"); err != nil {
		t.Fatal(err)
	}
}

func TestForwardTunnelConcurrentClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	echo := startEchoServer(t)
	defer echo.Close()

	localAddr := startForwardTunnel(t, ctx, tcpAddrPort(t, echo.Addr()))

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			conn, err := net.Dial("tcp", localAddr)
			if err != nil {
				return fmt.Errorf("dialing tunnel: %w", err)
			}
			defer conn.Close()

			// Several round trips per client; payloads must never
			// interleave across streams.
			for round := 0; round < 3; round++ {
				payload := fmt.Sprintf("PING-%02d-%d", i, round)
				if err := roundTrip(conn, payload); err != nil {
					return fmt.Errorf("client %d: %w", i, err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestForwardTunnelPerStreamIsolation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	echo := startEchoServer(t)
	localAddr := startForwardTunnel(t, ctx, tcpAddrPort(t, echo.Addr()))

	healthy, err := net.Dial("tcp", localAddr)
	if err != nil {
		t.Fatalf("dialing tunnel: %s", err)
	}
	defer healthy.Close()

	if err := roundTrip(healthy, "PING"); err != nil {
		t.Fatal(err)
	}

	// Take the target down; its accepted connections keep echoing.
	echo.Close()

	refused, err := net.Dial("tcp", localAddr)
	if err != nil {
		t.Fatalf("dialing tunnel: %s", err)
	}
	defer refused.Close()

	refused.SetDeadline(time.Now().Add(5 * time.Second))
	refused.Write([]byte("PING"))
	buf := make([]byte, 4)
	if _, err := io.ReadFull(refused, buf); err == nil {
		t.Error("refused stream echoed data but its target is down")
	}

	// The sibling stream is unaffected.
	if err := roundTrip(healthy, "PING2"); err != nil {
		t.Fatalf("healthy stream after sibling failure: %s", err)
	}
}
