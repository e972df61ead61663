package entrypoint

import (
	"context"
	"fmt"

	"github.com/Icelain/sirang/pkg/config"
	"github.com/Icelain/sirang/pkg/handler/reverse"
	"github.com/Icelain/sirang/pkg/quic"
)

// ReverseLocal dials the remote QUIC server and serves the reverse
// tunnel's local half until either side closes the tunnel.
func ReverseLocal(ctx context.Context, cfg *config.Local) error {
	sess, err := quic.Dial(ctx, cfg.RemoteQUICAddr.String(), []byte(cfg.TLSCert))
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.RemoteQUICAddr, err)
	}
	defer sess.Close()

	cfg.Logger.TraceMsg("Connected to remote QUIC server")

	h := reverse.NewLocal(ctx, cfg, sess)
	if err := h.Run(); err != nil {
		return fmt.Errorf("serving: %w", err)
	}

	return nil
}
