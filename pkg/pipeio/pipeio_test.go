package pipeio

import (
	"context"
	"io"
	"net"
	"testing"
	"time"
)

// bridge returns two connection ends wired together through Pipe, plus a
// channel closed when the pipe finishes.
func bridge(ctx context.Context, t *testing.T, logfunc func(error)) (net.Conn, net.Conn, chan struct{}) {
	t.Helper()

	c1, s1 := net.Pipe()
	c2, s2 := net.Pipe()

	done := make(chan struct{})
	go func() {
		Pipe(ctx, s1, s2, 1024, logfunc)
		close(done)
	}()

	return c1, c2, done
}

func TestPipeCopiesBothDirections(t *testing.T) {
	c1, c2, done := bridge(context.Background(), t, func(error) {})
	defer c1.Close()
	defer c2.Close()

	go func() {
		c1.Write([]byte("ping"))
	}()

	buf := make([]byte, 4)
	if _, err := io.ReadFull(c2, buf); err != nil {
		t.Fatalf("reading from c2: %s", err)
	}
	if string(buf) != "ping" {
		t.Errorf("read %q but want %q", buf, "ping")
	}

	go func() {
		c2.Write([]byte("pong"))
	}()

	if _, err := io.ReadFull(c1, buf); err != nil {
		t.Fatalf("reading from c1: %s", err)
	}
	if string(buf) != "pong" {
		t.Errorf("read %q but want %q", buf, "pong")
	}

	c1.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pipe did not finish after one end closed")
	}
}

func TestPipeClosesBothEndsTogether(t *testing.T) {
	c1, c2, done := bridge(context.Background(), t, func(error) {})

	c1.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pipe did not finish")
	}

	// The surviving end must be closed too.
	c2.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 1)
	if _, err := c2.Read(buf); err == nil {
		t.Error("read on c2 succeeded but want closed connection")
	}
}

func TestPipeStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	c1, c2, done := bridge(ctx, t, func(error) {})
	defer c1.Close()
	defer c2.Close()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pipe did not finish after context cancellation")
	}
}
