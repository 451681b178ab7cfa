// SPDX-License-Identifier: BSD-3-Clause

package fsm

import (
	"context"

	"github.com/qmuntal/stateless"
)

const (
	StateIdle = "idle"
	StateLoad = "load"

	triggerEnterLoad = "enter_load"
	triggerEnterIdle = "enter_idle"
)

// Hysteresis is the two-state machine backing a Target node: it
// starts idle, and only flips between idle and load when the
// configured threshold is actually crossed, never on every tick's
// transient reading.
type Hysteresis struct {
	machine *stateless.StateMachine
}

// NewHysteresis builds a Hysteresis machine in the idle state.
func NewHysteresis() *Hysteresis {
	m := stateless.NewStateMachine(StateIdle)

	m.Configure(StateIdle).
		Permit(triggerEnterLoad, StateLoad)

	m.Configure(StateLoad).
		Permit(triggerEnterIdle, StateIdle)

	return &Hysteresis{machine: m}
}

// State returns the current state, "idle" or "load".
func (h *Hysteresis) State() string {
	s, _ := h.machine.State(context.Background())
	return s.(string)
}

// Advance evaluates the hysteresis rule for one tick and returns the
// resulting state. loadThresholdReached and idleThresholdReached
// report whether t >= load_temp and t <= idle_temp respectively; at
// most one is meaningful in any given state, matching the node's own
// per-kind evaluation rule.
func (h *Hysteresis) Advance(ctx context.Context, loadThresholdReached, idleThresholdReached bool) string {
	switch h.State() {
	case StateIdle:
		if loadThresholdReached {
			_ = h.machine.FireCtx(ctx, triggerEnterLoad)
		}
	case StateLoad:
		if idleThresholdReached {
			_ = h.machine.FireCtx(ctx, triggerEnterIdle)
		}
	}
	return h.State()
}
