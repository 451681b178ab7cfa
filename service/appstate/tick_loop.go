// SPDX-License-Identifier: BSD-3-Clause

package appstate

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/gofancontrol/fancore/pkg/engine"
	"github.com/gofancontrol/fancore/pkg/log"
)

// tickLoop drives the Update Engine on the cadence configured in the
// Configuration Store's Settings, re-reading that cadence after every
// tick so a UpdateSettings call takes effect on the very next cycle
// without restarting the loop.
type tickLoop struct {
	state *AppState
}

func (t *tickLoop) Name() string {
	return t.state.config.name + "-tick"
}

func (t *tickLoop) Run(ctx context.Context, _ nats.InProcessConnProvider) error {
	logger := log.Get("appstate.tick")

	interval := t.state.tickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("tick loop started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.state.Tick(ctx)

			if next := t.state.tickInterval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}
