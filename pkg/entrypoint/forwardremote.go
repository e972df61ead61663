package entrypoint

import (
	"context"
	"fmt"

	"github.com/Icelain/sirang/pkg/config"
	"github.com/Icelain/sirang/pkg/handler/forward"
	"github.com/Icelain/sirang/pkg/quic"
)

// ForwardRemote starts the QUIC server and serves the forward tunnel's
// remote half until it finishes or the context is cancelled.
func ForwardRemote(ctx context.Context, cfg *config.Remote) error {
	srv, err := quic.NewServer(cfg.QUICAddr.String(), []byte(cfg.TLSCert), []byte(cfg.TLSKey))
	if err != nil {
		return fmt.Errorf("starting QUIC server on %s: %w", cfg.QUICAddr, err)
	}
	defer srv.Close()

	h := forward.NewRemote(ctx, cfg, srv)
	if err := h.Run(); err != nil {
		return fmt.Errorf("serving: %w", err)
	}

	return nil
}
