// SPDX-License-Identifier: BSD-3-Clause

package appstate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cirello.io/oversight/v2"
	"github.com/arunsworld/nursery"
	"github.com/nats-io/nats.go"

	"github.com/gofancontrol/fancore/pkg/bridge"
	"github.com/gofancontrol/fancore/pkg/engine"
	"github.com/gofancontrol/fancore/pkg/graph"
	"github.com/gofancontrol/fancore/pkg/log"
	"github.com/gofancontrol/fancore/pkg/process"
	"github.com/gofancontrol/fancore/pkg/store"
	"github.com/gofancontrol/fancore/service"
)

var _ service.Service = (*AppState)(nil)

// AppState owns one Hardware Bridge, one Configuration Store and one
// AppGraph, and is the single place that mutates any of them after
// startup - every front-end operation, including the per-tick
// evaluation itself, goes through a method on this type.
type AppState struct {
	config config

	mu     sync.Mutex
	hw     bridge.Bridge
	cs     *store.Store
	ag     *graph.AppGraph
	log    *slog.Logger
	cancel context.CancelFunc
}

// New creates an AppState. The Hardware Bridge and Configuration Store
// are not opened until Run is called.
func New(opts ...Option) *AppState {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return &AppState{config: *cfg}
}

// Name implements service.Service.
func (a *AppState) Name() string {
	return a.config.name
}

// Run initializes the Hardware Bridge and Configuration Store
// concurrently, builds the initial AppGraph from whatever
// configuration the store reports as current, and then runs a small
// internal supervision tree over the tick loop and the IPC handler
// registration until ctx is canceled.
func (a *AppState) Run(ctx context.Context, ipcConn nats.InProcessConnProvider) error {
	a.log = log.Get(a.config.name)

	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()
	defer cancel()

	var (
		hw           bridge.Bridge
		cs           *store.Store
		hwErr, csErr error
	)
	err := nursery.RunConcurrentlyWithContext(ctx,
		func(ctx context.Context, c chan error) {
			h, err := a.config.bridgeFactory(ctx, a.config.hwmonPath)
			hw, hwErr = h, err
			c <- err
		},
		func(ctx context.Context, c chan error) {
			s, err := store.New(a.config.storeOpts...)
			cs, csErr = s, err
			c <- err
		},
	)
	if err != nil {
		if hwErr != nil {
			return fmt.Errorf("initialize hardware bridge: %w", hwErr)
		}
		if csErr != nil {
			return fmt.Errorf("initialize configuration store: %w", csErr)
		}
		return err
	}

	cfg, _, err := cs.GetConfig()
	if err != nil {
		return fmt.Errorf("load initial configuration: %w", err)
	}

	a.mu.Lock()
	a.hw = hw
	a.cs = cs
	a.ag = graph.FromConfig(cfg, hw.Hardware())
	a.mu.Unlock()

	cs.DumpHardware(hw.Hardware())

	tree := oversight.New(
		oversight.NeverHalt(),
		oversight.DefaultRestartStrategy(),
		oversight.WithLogger(log.NewOversightLogger(a.log)),
	)

	if err := tree.Add(
		process.New(&tickLoop{state: a}, ipcConn),
		oversight.Transient(),
		oversight.Timeout(a.config.childTimeout),
		"tick-loop",
	); err != nil {
		return fmt.Errorf("add tick loop to supervision tree: %w", err)
	}
	if err := tree.Add(
		process.New(&ipcHandlers{state: a}, ipcConn),
		oversight.Transient(),
		oversight.Timeout(a.config.childTimeout),
		"ipc-handlers",
	); err != nil {
		return fmt.Errorf("add ipc handlers to supervision tree: %w", err)
	}

	runErr := tree.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.childTimeout)
	defer cancel()
	if err := hw.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("hardware bridge shutdown failed", "error", err)
	}

	return runErr
}

// Tick runs one evaluation pass immediately, out of band from the
// regular ticker cadence. Used for manual/debug triggers from a
// front-end.
func (a *AppState) Tick(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	settings := a.cs.GetSettings()
	engine.Tick(ctx, a.ag, a.hw, settings.Inactive)
}

// Hardware returns the bridge's hardware description.
func (a *AppState) Hardware() *bridge.Hardware {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hw.Hardware()
}

// ConfigNames returns every stored configuration name.
func (a *AppState) ConfigNames() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cs.ConfigNames()
}

// CurrentConfig returns the active configuration's name, or nil.
func (a *AppState) CurrentConfig() *string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cs.CurrentConfig()
}

// ChangeConfig switches the active configuration, rebuilds the graph
// from it in place, and re-runs a tick immediately so observed values
// don't sit stale until the next scheduled tick.
func (a *AppState) ChangeConfig(ctx context.Context, name *string) (*store.Config, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cfg, err := a.cs.ChangeConfig(name)
	if err != nil {
		return nil, err
	}
	a.ag.ApplyConfig(cfg, a.hw.Hardware())
	engine.Tick(ctx, a.ag, a.hw, a.cs.GetSettings().Inactive)
	return cfg, nil
}

// CreateConfig stores a new named configuration.
func (a *AppState) CreateConfig(name string, cfg *store.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cs.CreateConfig(name, cfg)
}

// RenameConfig renames a stored configuration.
func (a *AppState) RenameConfig(prev, next string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cs.RenameConfig(prev, next)
}

// RemoveConfig deletes a stored configuration. ok reports whether it
// was the active one (in which case the graph is now empty).
func (a *AppState) RemoveConfig(name string) (ok bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	wasActive, err := a.cs.RemoveConfig(name)
	if err != nil {
		return false, err
	}
	if wasActive {
		a.ag.ApplyConfig(&store.Config{}, a.hw.Hardware())
	}
	return wasActive, nil
}

// SaveConfig persists cfg under name. If name is the active
// configuration, the live graph is rebuilt from it immediately.
func (a *AppState) SaveConfig(name string, cfg *store.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.cs.SaveConfig(name, cfg); err != nil {
		return err
	}
	if current := a.cs.CurrentConfig(); current != nil && *current == name {
		a.ag.ApplyConfig(cfg, a.hw.Hardware())
	}
	return nil
}

// GetSettings returns the persisted settings.
func (a *AppState) GetSettings() store.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cs.GetSettings()
}

// UpdateSettings persists new settings wholesale, normalizing the
// update cadence floor.
func (a *AppState) UpdateSettings(next store.Settings) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cs.UpdateSettings(func(s *store.Settings) {
		*s = next
		s.Normalize()
	})
}

// GetState returns the persisted UI-adjacent state.
func (a *AppState) GetState() store.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cs.GetState()
}

// UpdateState persists new state wholesale.
func (a *AppState) UpdateState(next store.State) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cs.UpdateState(func(s *store.State) {
		*s = next
	})
}

// SetActive toggles a Control node's active flag. Deactivating a
// hardware-bound Control that is currently in Manual forces it back to
// Auto immediately, rather than waiting for the next invalid-subgraph
// sweep.
func (a *AppState) SetActive(ctx context.Context, id graph.Identifier, active bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	needsAutoRestore, internalIndex, err := a.ag.SetActive(id, active)
	if err != nil {
		return err
	}
	if !needsAutoRestore {
		return nil
	}
	if err := a.hw.SetMode(ctx, internalIndex, bridge.Mode{Kind: bridge.ModeAuto}); err != nil {
		a.log.Warn("failed to restore control to auto on deactivation", "error", err)
		return nil
	}
	a.ag.ConfirmAutoRestored(ctx, id)
	return nil
}

// Shutdown requests the daemon stop: it cancels Run's context, which
// unwinds the internal supervision tree and triggers the Hardware
// Bridge's own shutdown (restoring every control it ever switched out
// of its startup mode).
func (a *AppState) Shutdown() {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (a *AppState) tickInterval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return time.Duration(a.cs.GetSettings().UpdateDelayMs) * time.Millisecond
}
