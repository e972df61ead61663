package entrypoint

import (
	"context"
	"fmt"

	"github.com/Icelain/sirang/pkg/config"
	"github.com/Icelain/sirang/pkg/handler/reverse"
	"github.com/Icelain/sirang/pkg/quic"
)

// ReverseRemote starts the QUIC server and serves the reverse tunnel's
// remote half until the process shuts down.
func ReverseRemote(ctx context.Context, cfg *config.Remote) error {
	srv, err := quic.NewServer(cfg.QUICAddr.String(), []byte(cfg.TLSCert), []byte(cfg.TLSKey))
	if err != nil {
		return fmt.Errorf("starting QUIC server on %s: %w", cfg.QUICAddr, err)
	}
	defer srv.Close()

	h := reverse.NewRemote(ctx, cfg, srv)
	if err := h.Run(); err != nil {
		return fmt.Errorf("serving: %w", err)
	}

	return nil
}
