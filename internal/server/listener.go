package server

import (
	"fmt"
	"net"

	"github.com/codepr/tritedb/internal/config"
)

// NewListener opens the TCP or Unix-domain listener named by cfg: a
// configured unix_socket path selects the Unix family, otherwise
// ip_address/ip_port selects TCP.
//
// cfg.TCPBacklog is intentionally not applied here: net.Listen doesn't
// expose the listen(2) backlog argument (see DESIGN.md).
func NewListener(cfg *config.Config) (net.Listener, error) {
	if cfg.UnixSocket != "" {
		l, err := net.Listen("unix", cfg.UnixSocket)
		if err != nil {
			return nil, fmt.Errorf("server: listening on unix socket %s: %w", cfg.UnixSocket, err)
		}
		return l, nil
	}
	addr := fmt.Sprintf("%s:%d", cfg.IPAddress, cfg.IPPort)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("server: listening on %s: %w", addr, err)
	}
	return l, nil
}
