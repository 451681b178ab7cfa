// SPDX-License-Identifier: BSD-3-Clause

package ipc

import "time"

type config struct {
	serverName      string
	storeDir        string
	startupTimeout  time.Duration
	shutdownTimeout time.Duration
}

// Option configures a Bus.
type Option interface {
	apply(*config)
}

type serverNameOption struct{ name string }

func (o *serverNameOption) apply(c *config) { c.serverName = o.name }

// WithServerName sets the embedded NATS server's name, surfaced in its
// own logs and in server.ID().
func WithServerName(name string) Option {
	return &serverNameOption{name: name}
}

type storeDirOption struct{ dir string }

func (o *storeDirOption) apply(c *config) { c.storeDir = o.dir }

// WithStoreDir sets the directory the embedded server uses for its own
// runtime state (currently just a PID/port scratch file, since
// JetStream persistence is not enabled).
func WithStoreDir(dir string) Option {
	return &storeDirOption{dir: dir}
}

type startupTimeoutOption struct{ d time.Duration }

func (o *startupTimeoutOption) apply(c *config) { c.startupTimeout = o.d }

// WithStartupTimeout bounds how long Run waits for the embedded server
// to report ready before giving up.
func WithStartupTimeout(d time.Duration) Option {
	return &startupTimeoutOption{d: d}
}

type shutdownTimeoutOption struct{ d time.Duration }

func (o *shutdownTimeoutOption) apply(c *config) { c.shutdownTimeout = o.d }

// WithShutdownTimeout bounds how long a graceful lame-duck shutdown is
// given before the server is forced down.
func WithShutdownTimeout(d time.Duration) Option {
	return &shutdownTimeoutOption{d: d}
}
