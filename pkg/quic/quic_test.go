package quic

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/Icelain/sirang/pkg/crypto"
)

func testCertPair(t *testing.T) ([]byte, []byte) {
	t.Helper()

	certPEM, keyPEM, err := crypto.GeneratePair([]string{"127.0.0.1", "::1"})
	if err != nil {
		t.Fatalf("crypto.GeneratePair(): %s", err)
	}

	return certPEM, keyPEM
}

func TestNewServerEphemeralPort(t *testing.T) {
	certPEM, keyPEM := testCertPair(t)

	srv, err := NewServer("127.0.0.1:0", certPEM, keyPEM)
	if err != nil {
		t.Fatalf("NewServer(): %s", err)
	}
	defer srv.Close()

	addr, ok := srv.Addr().(*net.UDPAddr)
	if !ok {
		t.Fatalf("Addr() = %T but want *net.UDPAddr", srv.Addr())
	}
	if addr.Port == 0 {
		t.Error("bound port is zero")
	}
}

func TestNewServerBadPEM(t *testing.T) {
	if _, err := NewServer("127.0.0.1:0", []byte("not a cert"), []byte("not a key")); err == nil {
		t.Error("NewServer() with malformed PEM expected an error")
	}
}

func TestDialBadPEM(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := Dial(ctx, "127.0.0.1:1", []byte("not a cert")); err == nil {
		t.Error("Dial() with malformed PEM expected an error")
	}
}

func TestClientServerStream(t *testing.T) {
	certPEM, keyPEM := testCertPair(t)

	srv, err := NewServer("127.0.0.1:0", certPEM, keyPEM)
	if err != nil {
		t.Fatalf("NewServer(): %s", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	resCh := make(chan result, 1)

	go func() {
		sess, err := srv.Accept(ctx)
		if err != nil {
			resCh <- result{err: err}
			return
		}
		// Closing the session drops stream data the client has not read
		// yet, so keep it open until the test is over.
		defer func() {
			<-ctx.Done()
			sess.Close()
		}()

		stream, err := sess.AcceptStream(ctx)
		if err != nil {
			resCh <- result{err: err}
			return
		}

		buf := make([]byte, 64)
		n, err := stream.Read(buf)
		if err != nil {
			resCh <- result{err: err}
			return
		}

		if _, err := stream.Write(buf[:n]); err != nil {
			resCh <- result{err: err}
			return
		}

		resCh <- result{data: buf[:n]}
	}()

	sess, err := Dial(ctx, srv.Addr().String(), certPEM)
	if err != nil {
		t.Fatalf("Dial(): %s", err)
	}
	defer sess.Close()

	stream, err := sess.OpenStream(ctx)
	if err != nil {
		t.Fatalf("OpenStream(): %s", err)
	}

	if _, err := stream.Write([]byte("hello")); err != nil {
		t.Fatalf("Write(): %s", err)
	}

	res := <-resCh
	if res.err != nil {
		t.Fatalf("server side: %s", res.err)
	}
	if string(res.data) != "hello" {
		t.Errorf("server received %q but want %q", res.data, "hello")
	}

	buf := make([]byte, 64)
	n, err := stream.Read(buf)
	if err != nil {
		t.Fatalf("Read(): %s", err)
	}
	if string(buf[:n]) != "hello" {
		t.Errorf("client received %q but want %q", buf[:n], "hello")
	}
}

func TestDialUntrustedServer(t *testing.T) {
	certPEM, keyPEM := testCertPair(t)

	srv, err := NewServer("127.0.0.1:0", certPEM, keyPEM)
	if err != nil {
		t.Fatalf("NewServer(): %s", err)
	}
	defer srv.Close()

	// A different self-signed certificate must not be trusted.
	otherCert, _, err := crypto.GeneratePair([]string{"127.0.0.1"})
	if err != nil {
		t.Fatalf("crypto.GeneratePair(): %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := Dial(ctx, srv.Addr().String(), otherCert); err == nil {
		t.Error("Dial() with the wrong trust anchor expected an error")
	}
}
