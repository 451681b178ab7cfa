// SPDX-License-Identifier: BSD-3-Clause

package ipc

import (
	"fmt"
	"net"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// serverConnProvider implements ConnProvider against an embedded NATS
// server, with a readiness wait so callers don't need to coordinate
// startup order with Bus.Run themselves.
type serverConnProvider struct {
	server *server.Server
}

func (p *serverConnProvider) InProcessConn() (net.Conn, error) {
	if p.server == nil {
		return nil, ErrConnectionNotAvailable
	}
	if !p.server.ReadyForConnections(time.Minute) {
		return nil, ErrServerNotReady
	}
	conn, err := p.server.InProcessConn()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInProcessConnFailed, err)
	}
	return conn, nil
}
