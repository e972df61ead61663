package reverse

import (
	"context"
	"fmt"
	"io"
	"net/netip"

	"github.com/Icelain/sirang/pkg/config"
	"github.com/Icelain/sirang/pkg/pipeio"
	"github.com/Icelain/sirang/pkg/proto"
	"github.com/Icelain/sirang/pkg/quic"
)

// Local is the agent behind the NAT: it dials out to the remote,
// performs the CONNECTED handshake, then bridges every stream the remote
// pushes to the local TCP service.
type Local struct {
	ctx  context.Context
	cfg  *config.Local
	sess *quic.Session

	dialerFn config.TCPDialerFunc
	stdoutFn func() io.Writer
}

// NewLocal creates the local half of the reverse engine on an
// established session. The context must be the process-wide one
// cancelled on interrupt.
func NewLocal(ctx context.Context, cfg *config.Local, sess *quic.Session) *Local {
	return &Local{
		ctx:      ctx,
		cfg:      cfg,
		sess:     sess,
		dialerFn: config.GetTCPDialerFunc(cfg.Deps),
		stdoutFn: config.GetStdoutFunc(cfg.Deps),
	}
}

// Run accepts the control stream, performs the handshake and serves pushed
// data streams until the remote closes, our own CLOSED is acknowledged,
// or the session fails.
func (h *Local) Run() error {
	// The control stream is the first stream the remote opens after
	// session establishment; it becomes observable here together with
	// the CONNECTED announcement.
	ctl, err := h.sess.AcceptStream(h.ctx)
	if err != nil {
		return fmt.Errorf("accepting control stream: %w", err)
	}

	public, err := h.handshake(ctl)
	if err != nil {
		return fmt.Errorf("handshake with remote instance: %w", err)
	}

	// The announcement is user-facing output, not a log line.
	fmt.Fprintf(h.stdoutFn(), "Access from %s\n", public)

	// Independent of the interrupt context: after an interrupt the data
	// loop keeps accepting until the control handler sees ACK or CLOSED,
	// so the teardown exchange can complete.
	closeCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.handleControlStream(ctl, cancel)

	for {
		stream, err := h.sess.AcceptStream(closeCtx)
		if err != nil {
			if closeCtx.Err() != nil || h.ctx.Err() != nil {
				return nil
			}
			// The remote may drop the session right after its CLOSED;
			// a clean peer close is still a graceful exit.
			if quic.IsGracefulClose(err) {
				h.cfg.Logger.InfoMsg("Remote tunnel instance has closed the connection")
				return nil
			}
			return fmt.Errorf("accepting stream: %w", err)
		}

		h.cfg.Logger.TraceMsg("Stream received from remote instance")

		go h.handleTunnel(stream)
	}
}

// handshake blocks for the CONNECTED announcement carrying the public
// TCP address. Anything else on the control stream at this point is
// fatal. When the announced host is unspecified the remote bound all
// interfaces, and its QUIC address is the reachable one.
func (h *Local) handshake(ctl *quic.Stream) (netip.AddrPort, error) {
	buf := make([]byte, commandBufferSize)
	n, err := ctl.Read(buf)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("unable to receive handshake data: %w", err)
	}

	cmd, ok := proto.Parse(buf[:n])
	if !ok {
		return netip.AddrPort{}, fmt.Errorf("unable to decode handshake data")
	}
	if cmd.Type != proto.Connected {
		return netip.AddrPort{}, fmt.Errorf("unexpected %s command from remote instance", cmd.Type)
	}

	public := cmd.Addr
	if public.Addr().IsUnspecified() {
		if ap, ok := addrPortOf(h.sess.RemoteAddr()); ok {
			public = netip.AddrPortFrom(ap.Addr().Unmap(), public.Port())
		}
	}

	h.cfg.Logger.TraceMsg("Handshake complete")

	return public, nil
}

// handleControlStream reacts to remote commands and to the process
// interrupt. CLOSED from the remote and ACK for our own CLOSED both end
// the session. The CLOSED send on interrupt is best effort since the
// remote may already be gone.
func (h *Local) handleControlStream(ctl *quic.Stream, cancel context.CancelFunc) {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-h.ctx.Done():
			if _, err := ctl.Write(proto.Command{Type: proto.Closed}.Serialize()); err != nil {
				h.cfg.Logger.WarnMsg("Could not send CLOSED to remote reverse tunnel instance: %s", err)
			}
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
			continue
		}

		switch cmd.Type {
		case proto.Closed:
			h.cfg.Logger.InfoMsg("Remote tunnel instance has closed the connection")
			cancel()
			return
		case proto.Ack:
			h.cfg.Logger.InfoMsg("Closing local instance")
			cancel()
			return
		}
	}
}

// handleTunnel pairs one pushed stream with a fresh TCP connection to
// the local service. A connect failure affects only this stream.
func (h *Local) handleTunnel(stream *quic.Stream) {
	addr := h.cfg.LocalTCPAddr.String()

	conn, err := h.dialerFn(h.ctx, addr)
	if err != nil {
		h.cfg.Logger.WarnMsg("Connecting to the local TCP address %s: %s", addr, err)
		stream.Close()
		return
	}

	pipeio.Pipe(h.ctx, conn, stream, h.cfg.BufferSize, func(err error) {
		h.cfg.Logger.WarnMsg("Tunneling stream to %s: %s", addr, err)
	})
}
