// Package forward implements the data plane of the forward tunnel: TCP
// connections accepted on the local side are carried over dedicated QUIC
// streams to the remote, which connects each one to the forward target.
// No control protocol is involved; streams carry opaque bytes end to end.
package forward

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/Icelain/sirang/pkg/config"
	"github.com/Icelain/sirang/pkg/pipeio"
	"github.com/Icelain/sirang/pkg/quic"
)

// Local accepts TCP connections and forwards each one over its own QUIC
// stream on the established session.
type Local struct {
	ctx  context.Context
	cfg  *config.Local
	sess *quic.Session

	listenerFn config.TCPListenerFunc
}

// NewLocal creates the local half of the forward engine on an
// established session.
func NewLocal(ctx context.Context, cfg *config.Local, sess *quic.Session) *Local {
	return &Local{
		ctx:        ctx,
		cfg:        cfg,
		sess:       sess,
		listenerFn: config.GetTCPListenerFunc(cfg.Deps),
	}
}

// Run binds the local TCP listener and serves until the listener fails,
// the session dies, or the context is cancelled. A failure on a single
// connection is a warning; a failed stream open means the session is
// gone and is fatal.
func (h *Local) Run() error {
	addr := h.cfg.LocalTCPAddr.String()

	l, err := h.listenerFn(addr)
	if err != nil {
		return fmt.Errorf("listen(tcp, %s): %w", addr, err)
	}
	defer l.Close()

	go func() {
		<-h.ctx.Done()
		l.Close()
	}()

	h.cfg.Logger.InfoMsg("Tunneled TCP server accessible at %s", addr)

	for {
		conn, err := l.Accept()
		if err != nil {
			if h.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("Accept(): %w", err)
		}

		stream, err := h.sess.OpenStream(h.ctx)
		if err != nil {
			conn.Close()
			if h.ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("opening stream: %w", err)
		}

		h.cfg.Logger.TraceMsg("Forwarding connection from %s", conn.RemoteAddr())

		go pipeio.Pipe(h.ctx, conn, stream, h.cfg.BufferSize, func(err error) {
			h.cfg.Logger.WarnMsg("Forwarding connection from %s: %s", conn.RemoteAddr(), err)
		})
	}
}
