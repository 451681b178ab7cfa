// SPDX-License-Identifier: BSD-3-Clause

package ipc

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/gofancontrol/fancore/pkg/log"
)

// Bus is an embedded NATS server used purely as an in-process message
// bus between AppState's front-end surface and whatever front-end
// (CLI, future UI) drives it. It never opens a TCP listener: remote
// control of a running daemon is explicitly out of scope, so the only
// way in is an in-process connection obtained through ConnProvider.
type Bus struct {
	config *config
	server *server.Server
}

// New creates a Bus with the given options applied over sane defaults.
// The embedded server is not started until Run is called.
func New(opts ...Option) *Bus {
	cfg := &config{
		serverName:      "fancored",
		startupTimeout:  5 * time.Second,
		shutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return &Bus{config: cfg}
}

// Name implements service.Service so Bus can sit in the same
// supervision tree as every other long-running component.
func (b *Bus) Name() string {
	return b.config.serverName
}

// Run starts the embedded NATS server and blocks until ctx is
// canceled, then shuts the server down. ipcConn is unused: Bus is
// itself the provider other components obtain connections from via
// ConnProvider, never a consumer of one.
func (b *Bus) Run(ctx context.Context, _ nats.InProcessConnProvider) error {
	logger := log.Get("ipc")

	opts := &server.Options{
		ServerName:     b.config.serverName,
		DontListen:     true,
		NoSigs:         true,
		NoLog:          false,
		MaxControlLine: 4096,
		MaxPayload:     1 << 20,
		PingInterval:   2 * time.Minute,
		MaxPingsOut:    2,
	}
	if b.config.storeDir != "" {
		opts.StoreDir = b.config.storeDir
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return fmt.Errorf("create embedded nats server: %w", err)
	}
	b.server = ns
	b.server.SetLoggerV2(log.NewNATSLogger(logger), false, false, false)

	logger.Info("starting in-process message bus", "server_name", b.config.serverName)
	b.server.Start()

	if !b.server.ReadyForConnections(b.config.startupTimeout) {
		b.server.Shutdown()
		return fmt.Errorf("embedded nats server not ready within %v", b.config.startupTimeout)
	}
	logger.Info("message bus ready", "server_id", b.server.ID())

	<-ctx.Done()
	return b.shutdown(ctx)
}

func (b *Bus) shutdown(ctx context.Context) error {
	err := ctx.Err()

	logger := log.Get("ipc")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.config.shutdownTimeout)
	defer cancel()

	if b.server != nil {
		b.server.LameDuckShutdown()
		done := make(chan struct{})
		go func() {
			defer close(done)
			b.server.Shutdown()
		}()
		select {
		case <-done:
			logger.Info("message bus shut down")
		case <-shutdownCtx.Done():
			logger.Warn("message bus shutdown timed out, forcing")
		}
	}

	return err
}

// ConnProvider returns a ConnProvider bound to this Bus's server. It
// may be called before Run finishes starting the server: InProcessConn
// blocks and polls until the server is ready or its own timeout
// elapses.
func (b *Bus) ConnProvider() *serverConnProvider {
	timeout := time.Now().Add(b.config.startupTimeout)
	for b.server == nil && time.Now().Before(timeout) {
		time.Sleep(time.Millisecond)
	}
	return &serverConnProvider{server: b.server}
}
