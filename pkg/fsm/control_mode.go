// SPDX-License-Identifier: BSD-3-Clause

package fsm

import (
	"context"

	"github.com/qmuntal/stateless"
)

const (
	StateAuto   = "auto"
	StateManual = "manual"

	triggerGoManual = "go_manual"
	triggerGoAuto   = "go_auto"
)

// ControlMode tracks whether a Control node currently has its
// hardware switched into Manual mode, mirroring the engine's
// manual_has_been_set bookkeeping as an explicit state machine so
// transitions can only happen through GoManual/GoAuto.
type ControlMode struct {
	machine *stateless.StateMachine
}

// NewControlMode builds a ControlMode machine starting in Auto,
// matching every Control's state before its first successful write.
func NewControlMode() *ControlMode {
	m := stateless.NewStateMachine(StateAuto)

	m.Configure(StateAuto).
		Permit(triggerGoManual, StateManual)

	m.Configure(StateManual).
		Permit(triggerGoAuto, StateAuto)

	return &ControlMode{machine: m}
}

func (c *ControlMode) state() string {
	s, _ := c.machine.State(context.Background())
	return s.(string)
}

// IsManual reports whether the control is currently in Manual mode.
func (c *ControlMode) IsManual() bool {
	return c.state() == StateManual
}

// GoManual fires the auto->manual transition. A no-op if already
// manual.
func (c *ControlMode) GoManual(ctx context.Context) error {
	if c.IsManual() {
		return nil
	}
	return c.machine.FireCtx(ctx, triggerGoManual)
}

// GoAuto fires the manual->auto transition. A no-op if already auto.
func (c *ControlMode) GoAuto(ctx context.Context) error {
	if !c.IsManual() {
		return nil
	}
	return c.machine.FireCtx(ctx, triggerGoAuto)
}
