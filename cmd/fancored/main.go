// SPDX-License-Identifier: BSD-3-Clause

// Command fancored is the fan-control daemon: it loads a named
// configuration, evaluates it against the host's hardware-monitoring
// subsystem on a fixed cadence, and writes the resulting duty cycles
// back. See service/appstate for the engine itself; this package is
// only process bootstrap - flag parsing, logging setup, the
// single-instance lock, and supervision of the IPC bus plus AppState.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cirello.io/oversight/v2"
	"github.com/arunsworld/nursery"
	"github.com/spf13/cobra"

	"github.com/gofancontrol/fancore/pkg/bridge"
	"github.com/gofancontrol/fancore/pkg/ipc"
	"github.com/gofancontrol/fancore/pkg/lock"
	"github.com/gofancontrol/fancore/pkg/log"
	"github.com/gofancontrol/fancore/pkg/process"
	"github.com/gofancontrol/fancore/pkg/store"
	"github.com/gofancontrol/fancore/service/appstate"
)

// errLockHeld maps to exit code 2: another instance already owns the
// single-instance lock.
var errLockHeld = errors.New("lock held by another instance")

func main() {
	var (
		path       string
		configName string
		cliMode    bool
		debug      bool
		info       bool
		logFile    string
	)

	root := &cobra.Command{
		Use:           "fancored",
		Short:         "Fan control daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), path, configName, cliMode, debug, info, logFile)
		},
	}

	root.PersistentFlags().StringVarP(&path, "path", "p", "", "base directory for configuration and state (default: OS config dir)")
	root.PersistentFlags().StringVarP(&configName, "config", "c", "", "configuration to make current on startup")
	root.PersistentFlags().BoolVar(&cliMode, "cli", false, "run against a fake hardware bridge, for development without real sensors")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "set log level to debug")
	root.PersistentFlags().BoolVar(&info, "info", false, "set log level to info (default)")
	root.PersistentFlags().StringVar(&logFile, "log", "", "also write logs to this file")

	if err := root.ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, errLockHeld) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path, configName string, cliMode, debug, info bool, logFile string) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else if info {
		level = slog.LevelInfo
	}
	if err := log.Init(log.Options{Level: level, FilePath: logFile}); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer log.Close()

	logger := log.Get("main")

	cacheDir := path
	if cacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return fmt.Errorf("resolve cache dir: %w", err)
		}
		cacheDir = filepath.Join(dir, "fancored")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	l, err := lock.Acquire(filepath.Join(cacheDir, "app.lock"))
	if err != nil {
		if errors.Is(err, lock.ErrAlreadyLocked) {
			return errLockHeld
		}
		return fmt.Errorf("acquire single-instance lock: %w", err)
	}
	defer l.Release()
	logger.Info("acquired single-instance lock", "instance_id", l.InstanceID())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	storeOpts := []store.Option{}
	if path != "" {
		storeOpts = append(storeOpts, store.WithConfigDir(filepath.Join(path, "configs")), store.WithStateDir(path))
	}
	if configName != "" {
		storeOpts = append(storeOpts, store.WithCurrentConfigOverride(configName))
	}

	stateOpts := []appstate.Option{appstate.WithStoreOptions(storeOpts...)}
	if cliMode {
		logger.Info("running in --cli mode: no real hardware will be scanned")
		stateOpts = append(stateOpts, appstate.WithBridgeFactory(fakeBridge))
	}

	bus := ipc.New(ipc.WithStoreDir(cacheDir))
	state := appstate.New(stateOpts...)

	tree := oversight.New(
		oversight.NeverHalt(),
		oversight.DefaultRestartStrategy(),
		oversight.WithLogger(log.NewOversightLogger(logger)),
	)

	const childTimeout = 10 * time.Second

	if err := tree.Add(process.New(bus, nil), oversight.Transient(), oversight.Timeout(childTimeout), bus.Name()); err != nil {
		return fmt.Errorf("add ipc bus to supervision tree: %w", err)
	}

	supervise := func(ctx context.Context, c chan error) {
		c <- tree.Start(ctx)
	}
	spawnAppState := func(ctx context.Context, c chan error) {
		conn := bus.ConnProvider()
		if err := tree.Add(process.New(state, conn), oversight.Transient(), oversight.Timeout(childTimeout), state.Name()); err != nil {
			c <- fmt.Errorf("add appstate to supervision tree: %w", err)
			return
		}
		c <- nil
	}

	logger.Info("fancored starting", "cache_dir", cacheDir)
	return nursery.RunConcurrentlyWithContext(ctx, supervise, spawnAppState)
}

// fakeBridge builds a small deterministic hardware set (one control,
// one fan, one temp) for development without a real hwmon tree. It
// satisfies appstate.BridgeFactory; hwmonPath is ignored.
func fakeBridge(ctx context.Context, hwmonPath string) (bridge.Bridge, error) {
	return bridge.NewFake(
		[]bridge.FakeControl{
			{Name: "Fake Control", HardwareID: "fake:control:0", OriginalMode: bridge.Mode{Kind: bridge.ModeAuto}, InitialDuty: 40},
		},
		[]bridge.FakeSensor{
			{Name: "Fake Fan", HardwareID: "fake:fan:0", InitialValue: 1200},
		},
		[]bridge.FakeSensor{
			{Name: "Fake Temp", HardwareID: "fake:temp:0", InitialValue: 45},
		},
	), nil
}
