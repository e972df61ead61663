// Package entrypoint wires configuration, transport and handlers into
// the four agent roles: {forward, reverse} × {local, remote}.
package entrypoint

import (
	"context"
	"fmt"

	"github.com/Icelain/sirang/pkg/config"
	"github.com/Icelain/sirang/pkg/handler/forward"
	"github.com/Icelain/sirang/pkg/quic"
)

// ForwardLocal dials the remote QUIC server and serves the forward
// tunnel's local half until it finishes or the context is cancelled.
func ForwardLocal(ctx context.Context, cfg *config.Local) error {
	sess, err := quic.Dial(ctx, cfg.RemoteQUICAddr.String(), []byte(cfg.TLSCert))
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.RemoteQUICAddr, err)
	}
	defer sess.Close()

	cfg.Logger.InfoMsg("QUIC connection established with remote server")

	h := forward.NewLocal(ctx, cfg, sess)
	if err := h.Run(); err != nil {
		return fmt.Errorf("serving: %w", err)
	}

	return nil
}
