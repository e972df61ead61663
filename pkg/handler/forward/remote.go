package forward

import (
	"context"
	"fmt"

	"github.com/Icelain/sirang/pkg/config"
	"github.com/Icelain/sirang/pkg/pipeio"
	"github.com/Icelain/sirang/pkg/quic"
)

// Remote is the server half of the forward engine: it bridges every
// incoming QUIC stream to a fresh TCP connection to the forward target.
type Remote struct {
	ctx context.Context
	cfg *config.Remote
	srv *quic.Server

	dialerFn config.TCPDialerFunc
}

// NewRemote creates the remote half of the forward engine on a started
// QUIC server.
func NewRemote(ctx context.Context, cfg *config.Remote, srv *quic.Server) *Remote {
	return &Remote{
		ctx:      ctx,
		cfg:      cfg,
		srv:      srv,
		dialerFn: config.GetTCPDialerFunc(cfg.Deps),
	}
}

// Run accepts QUIC sessions and serves each one in its own goroutine
// until the context is cancelled or the server fails.
func (h *Remote) Run() error {
	h.cfg.Logger.InfoMsg("QUIC server started on %s", h.srv.Addr())

	for {
		sess, err := h.srv.Accept(h.ctx)
		if err != nil {
			if h.ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accepting session: %w", err)
		}

		h.cfg.Logger.TraceMsg("QUIC session established with %s", sess.RemoteAddr())

		go h.handleSession(sess)
	}
}

// handleSession accepts streams on one session until it ends. A TCP
// connect failure affects only the one stream; siblings keep running.
func (h *Remote) handleSession(sess *quic.Session) {
	defer sess.Close()

	addr := h.cfg.TCPForwardAddr.String()

	for {
		stream, err := sess.AcceptStream(h.ctx)
		if err != nil {
			h.cfg.Logger.TraceMsg("Session from %s ended: %s", sess.RemoteAddr(), err)
			return
		}

		h.cfg.Logger.TraceMsg("Stream received from %s", sess.RemoteAddr())

		go func() {
			conn, err := h.dialerFn(h.ctx, addr)
			if err != nil {
				h.cfg.Logger.WarnMsg("Connecting to the forward TCP address %s: %s", addr, err)
				stream.Close()
				return
			}

			pipeio.Pipe(h.ctx, conn, stream, h.cfg.BufferSize, func(err error) {
				h.cfg.Logger.WarnMsg("Forwarding stream to %s: %s", addr, err)
			})
		}()
	}
}
