package reverse

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Icelain/sirang/pkg/config"
	"github.com/Icelain/sirang/pkg/pipeio"
	"github.com/Icelain/sirang/pkg/proto"
	"github.com/Icelain/sirang/pkg/quic"
)

// Remote is the publicly reachable half of the reverse tunnel. It binds
// the public TCP listener for one reverse client at a time and opens a
// QUIC stream toward that client for every TCP connection it accepts.
type Remote struct {
	ctx context.Context
	cfg *config.Remote
	srv *quic.Server

	listenerFn config.TCPListenerFunc
}

// NewRemote creates the remote half of the reverse engine on a started
// QUIC server. The context must be the process-wide one cancelled on
// interrupt.
func NewRemote(ctx context.Context, cfg *config.Remote, srv *quic.Server) *Remote {
	return &Remote{
		ctx:        ctx,
		cfg:        cfg,
		srv:        srv,
		listenerFn: config.GetTCPListenerFunc(cfg.Deps),
	}
}

// Run serves reverse tunnel clients one at a time. The public TCP
// listener is exclusive to the currently bound QUIC peer; the next
// client is accepted only once the previous session is released.
func (h *Remote) Run() error {
	h.cfg.Logger.InfoMsg("QUIC server started on %s", h.srv.Addr())

	for {
		sess, err := h.srv.Accept(h.ctx)
		if err != nil {
			if h.ctx.Err() != nil {
				h.cfg.Logger.InfoMsg("Shutdown signal received, exiting")
				return nil
			}
			return fmt.Errorf("accepting session: %w", err)
		}

		h.cfg.Logger.TraceMsg("QUIC session established with %s", sess.RemoteAddr())

		done := h.handleSession(sess)
		sess.Close()
		if done {
			return nil
		}
	}
}

// handleSession binds the public listener for one reverse client and
// bridges its TCP connections until the client or the process goes away.
// It reports whether the whole agent should exit. Every failure short of
// that drops the session with a warning and lets the loop accept the
// next client.
func (h *Remote) handleSession(sess *quic.Session) bool {
	l, err := h.listenerFn(h.cfg.TCPReverseAddr.String())
	if err != nil {
		h.cfg.Logger.WarnMsg("TCP listener could not be created: %s", err)
		return false
	}
	defer l.Close()

	public := h.cfg.TCPReverseAddr
	if ap, ok := addrPortOf(l.Addr()); ok {
		public = ap
	}

	// The control stream is the first stream opened on the session. The
	// CONNECTED announcement doubles as what makes it observable on the
	// local side, which accepts it before anything else.
	ctl, err := sess.OpenStream(h.ctx)
	if err != nil {
		if h.ctx.Err() != nil {
			return true
		}
		h.cfg.Logger.WarnMsg("Opening control stream to %s: %s", sess.RemoteAddr(), err)
		return false
	}

	if _, err := ctl.Write(proto.Command{Type: proto.Connected, Addr: public}.Serialize()); err != nil {
		h.cfg.Logger.WarnMsg("Sending connect handshake to local instance: %s", err)
		return false
	}

	h.cfg.Logger.InfoMsg("TCP server listening on %s", public)

	closeTCPWait := make(chan closeAction, 1)
	ctlDone := make(chan struct{})
	defer close(ctlDone)

	go h.handleControlStream(ctl, closeTCPWait, ctlDone)

	return h.acceptTCP(l, sess, closeTCPWait)
}

// handleControlStream processes commands from the local instance. The
// write half of the control stream is shared between the command loop
// and the interrupt path, so writes are serialised behind a mutex; reads
// happen on the independently owned receive direction and need no lock.
func (h *Remote) handleControlStream(ctl *quic.Stream, closeTCPWait chan<- closeAction, done <-chan struct{}) {
	var writeMu sync.Mutex

	go func() {
		select {
		case <-h.ctx.Done():
			writeMu.Lock()
			if _, err := ctl.Write(proto.Command{Type: proto.Closed}.Serialize()); err != nil {
				h.cfg.Logger.WarnMsg("Could not send CLOSED to local instance: %s", err)
			}
			writeMu.Unlock()

			pushAction(closeTCPWait, closeProcess)
		case <-done:
		}
	}()

	buf := make([]byte, commandBufferSize)
	for {
		n, err := ctl.Read(buf)
		if err != nil {
			return
		}

		cmd, ok := proto.Parse(buf[:n])
		if !ok {
			h.cfg.Logger.WarnMsg("Received invalid command data")
			continue
		}

		switch cmd.Type {
		case proto.Closed:
			h.cfg.Logger.TraceMsg("Local tunnel instance has closed the connection")

			writeMu.Lock()
			if _, err := ctl.Write(proto.Command{Type: proto.Ack}.Serialize()); err != nil {
				h.cfg.Logger.WarnMsg("Failed to send ACK: %s", err)
			}
			writeMu.Unlock()

			pushAction(closeTCPWait, closeStream)
			return
		default:
			h.cfg.Logger.TraceMsg("Received unhandled command")
		}
	}
}

type acceptResult struct {
	conn net.Conn
	err  error
}

// acceptTCP bridges public TCP connections to the bound session until
// the client disconnects or the process shuts down. The returned value
// reports whether the whole agent should exit.
func (h *Remote) acceptTCP(l net.Listener, sess *quic.Session, closeTCPWait <-chan closeAction) bool {
	acceptDone := make(chan struct{})
	defer close(acceptDone)

	conns := make(chan acceptResult)
	go func() {
		for {
			c, err := l.Accept()
			select {
			case conns <- acceptResult{conn: c, err: err}:
				if err != nil {
					return
				}
			case <-acceptDone:
				if c != nil {
					c.Close()
				}
				return
			}
		}
	}()

	for {
		select {
		case res := <-conns:
			if res.err != nil {
				if h.ctx.Err() != nil {
					return true
				}
				h.cfg.Logger.WarnMsg("Accept() on %s: %s", l.Addr(), res.err)
				return false
			}

			h.cfg.Logger.TraceMsg("Stream received from %s", res.conn.RemoteAddr())

			stream, err := sess.OpenStream(h.ctx)
			if err != nil {
				res.conn.Close()
				if h.ctx.Err() != nil {
					return true
				}
				h.cfg.Logger.WarnMsg("Unable to create stream with local instance: %s", err)
				return false
			}

			conn := res.conn
			go pipeio.Pipe(h.ctx, conn, stream, h.cfg.BufferSize, func(err error) {
				h.cfg.Logger.WarnMsg("Tunneling connection from %s: %s", conn.RemoteAddr(), err)
			})

		case action := <-closeTCPWait:
			switch action {
			case closeProcess:
				h.cfg.Logger.InfoMsg("Shutdown signal received, exiting")
				return true
			case closeStream:
				h.cfg.Logger.TraceMsg("Client disconnected, accepting new sessions")
				return false
			}

		case <-h.ctx.Done():
			// The control handler puts CLOSED on the wire on interrupt;
			// wait for its confirmation before tearing the session down.
			select {
			case <-closeTCPWait:
			case <-time.After(time.Second):
			}
			return true
		}
	}
}
