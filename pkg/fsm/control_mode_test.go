// SPDX-License-Identifier: BSD-3-Clause

package fsm

import (
	"context"
	"testing"
)

func TestControlModeStartsAuto(t *testing.T) {
	c := NewControlMode()
	if c.IsManual() {
		t.Fatal("new ControlMode should start in Auto")
	}
}

func TestControlModeGoManualThenGoAuto(t *testing.T) {
	c := NewControlMode()
	ctx := context.Background()

	if err := c.GoManual(ctx); err != nil {
		t.Fatalf("GoManual() error = %v", err)
	}
	if !c.IsManual() {
		t.Fatal("expected Manual after GoManual")
	}

	if err := c.GoAuto(ctx); err != nil {
		t.Fatalf("GoAuto() error = %v", err)
	}
	if c.IsManual() {
		t.Fatal("expected Auto after GoAuto")
	}
}

func TestControlModeRepeatedCallsAreNoOps(t *testing.T) {
	c := NewControlMode()
	ctx := context.Background()

	if err := c.GoAuto(ctx); err != nil {
		t.Fatalf("GoAuto() on fresh Auto should be a no-op, got error %v", err)
	}

	if err := c.GoManual(ctx); err != nil {
		t.Fatalf("GoManual() error = %v", err)
	}
	if err := c.GoManual(ctx); err != nil {
		t.Fatalf("GoManual() on already-Manual should be a no-op, got error %v", err)
	}
}
