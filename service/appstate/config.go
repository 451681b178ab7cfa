// SPDX-License-Identifier: BSD-3-Clause

package appstate

import (
	"context"
	"time"

	"github.com/gofancontrol/fancore/pkg/bridge"
	"github.com/gofancontrol/fancore/pkg/hwmon"
	"github.com/gofancontrol/fancore/pkg/store"
)

// BridgeFactory builds the Hardware Bridge an AppState drives. The
// default, set by defaultConfig, opens the real hwmon-backed bridge;
// WithBridgeFactory lets a front-end (the --cli development flag)
// substitute a fake one with no sysfs dependency.
type BridgeFactory func(ctx context.Context, hwmonPath string) (bridge.Bridge, error)

type config struct {
	name          string
	hwmonPath     string
	storeOpts     []store.Option
	childTimeout  time.Duration
	bridgeFactory BridgeFactory
}

// Option configures an AppState.
type Option interface {
	apply(*config)
}

type nameOption struct{ name string }

func (o *nameOption) apply(c *config) { c.name = o.name }

// WithName sets the service name reported to the supervision tree.
func WithName(name string) Option {
	return &nameOption{name: name}
}

type hwmonPathOption struct{ path string }

func (o *hwmonPathOption) apply(c *config) { c.hwmonPath = o.path }

// WithHwmonPath overrides the hwmon sysfs root the Hardware Bridge
// scans. Defaults to hwmon.DefaultHwmonPath.
func WithHwmonPath(path string) Option {
	return &hwmonPathOption{path: path}
}

type storeOptsOption struct{ opts []store.Option }

func (o *storeOptsOption) apply(c *config) { c.storeOpts = o.opts }

// WithStoreOptions passes options through to the Configuration Store.
func WithStoreOptions(opts ...store.Option) Option {
	return &storeOptsOption{opts: opts}
}

type childTimeoutOption struct{ d time.Duration }

func (o *childTimeoutOption) apply(c *config) { c.childTimeout = o.d }

// WithChildTimeout bounds how long the internal supervision tree waits
// for the tick loop and IPC handler goroutines to stop on shutdown.
func WithChildTimeout(d time.Duration) Option {
	return &childTimeoutOption{d: d}
}

type bridgeFactoryOption struct{ f BridgeFactory }

func (o *bridgeFactoryOption) apply(c *config) { c.bridgeFactory = o.f }

// WithBridgeFactory overrides how the Hardware Bridge is constructed.
// Used by the --cli development flag to substitute pkg/bridge.Fake for
// the real hwmon scan.
func WithBridgeFactory(f BridgeFactory) Option {
	return &bridgeFactoryOption{f: f}
}

func defaultConfig() *config {
	return &config{
		name:          "appstate",
		hwmonPath:     hwmon.DefaultHwmonPath,
		childTimeout:  10 * time.Second,
		bridgeFactory: func(ctx context.Context, hwmonPath string) (bridge.Bridge, error) {
			return bridge.New(ctx, hwmonPath)
		},
	}
}
