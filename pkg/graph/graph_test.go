// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/gofancontrol/fancore/pkg/bridge"
	"github.com/gofancontrol/fancore/pkg/store"
)

func fakeHardwareFor(t *testing.T) *bridge.Fake {
	t.Helper()
	return bridge.NewFake(
		[]bridge.FakeControl{{Name: "Ctrl", HardwareID: "control-1", OriginalMode: bridge.Mode{Kind: bridge.ModeAuto}}},
		nil,
		[]bridge.FakeSensor{{Name: "Temp", HardwareID: "temp-1", InitialValue: 50}},
	)
}

func TestRenamePropagatesToDependents(t *testing.T) {
	hw := fakeHardwareFor(t)
	cfg := &store.Config{
		Temp: []store.TempConfig{{Name: "OldName", HardwareID: "temp-1"}},
		Linear: []store.LinearConfig{
			{Name: "Lin", Input: "OldName", MinTemp: 0, MinSpeed: 0, MaxTemp: 100, MaxSpeed: 100},
		},
		Control: []store.ControlConfig{{Name: "Ctrl", HardwareID: "control-1", Input: "Lin", Active: true}},
	}
	g := FromConfig(cfg, hw.Hardware())

	var tempID Identifier
	for _, n := range g.Nodes() {
		if n.Kind == KindTemp {
			tempID = n.ID
		}
	}
	if tempID == NoIdentifier {
		t.Fatal("temp node not found")
	}

	if err := g.RenameNode(tempID, "NewName"); err != nil {
		t.Fatalf("RenameNode() error = %v", err)
	}

	out := g.ToConfig()
	if len(out.Linear) != 1 || out.Linear[0].Input != "NewName" {
		t.Fatalf("dependent input not updated: %+v", out.Linear)
	}
}

func TestRenameRejectsDuplicateName(t *testing.T) {
	hw := fakeHardwareFor(t)
	cfg := &store.Config{
		Temp:    []store.TempConfig{{Name: "A", HardwareID: "temp-1"}},
		Control: []store.ControlConfig{{Name: "B", HardwareID: "control-1"}},
	}
	g := FromConfig(cfg, hw.Hardware())

	var controlID Identifier
	for _, n := range g.Nodes() {
		if n.Kind == KindControl {
			controlID = n.ID
		}
	}

	err := g.RenameNode(controlID, "A")
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("RenameNode() error = %v, want ErrDuplicateName", err)
	}
}

func TestSetActiveDeactivatingManualControlRequestsAutoRestore(t *testing.T) {
	hw := fakeHardwareFor(t)
	cfg := &store.Config{
		Flat:    []store.FlatConfig{{Name: "Flat", Value: 50}},
		Control: []store.ControlConfig{{Name: "Ctrl", HardwareID: "control-1", Input: "Flat", Active: true}},
	}
	g := FromConfig(cfg, hw.Hardware())

	var controlID Identifier
	for _, n := range g.Nodes() {
		if n.Kind == KindControl {
			controlID = n.ID
			d := n.Data.(*ControlData)
			_ = d.Mode.GoManual(context.Background())
		}
	}

	needsRestore, _, err := g.SetActive(controlID, false)
	if err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	if !needsRestore {
		t.Fatal("expected needsAutoRestore = true for a manual, hardware-bound control")
	}

	g.ConfirmAutoRestored(context.Background(), controlID)
	n, _ := g.Get(controlID)
	d := n.Data.(*ControlData)
	if d.Mode.IsManual() {
		t.Fatal("expected control mode Auto after ConfirmAutoRestored")
	}
}

func TestSetActiveReactivatingNeedsNoRestore(t *testing.T) {
	hw := fakeHardwareFor(t)
	cfg := &store.Config{
		Flat:    []store.FlatConfig{{Name: "Flat", Value: 50}},
		Control: []store.ControlConfig{{Name: "Ctrl", HardwareID: "control-1", Input: "Flat", Active: false}},
	}
	g := FromConfig(cfg, hw.Hardware())

	var controlID Identifier
	for _, n := range g.Nodes() {
		if n.Kind == KindControl {
			controlID = n.ID
		}
	}

	needsRestore, _, err := g.SetActive(controlID, true)
	if err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	if needsRestore {
		t.Fatal("activating a control should never request an auto restore")
	}
}

func TestApplyConfigPreservesHysteresisForSurvivingTarget(t *testing.T) {
	hw := fakeHardwareFor(t)
	cfg := &store.Config{
		Temp: []store.TempConfig{{Name: "T", HardwareID: "temp-1"}},
		Target: []store.TargetConfig{
			{Name: "Tgt", Input: "T", IdleTemp: 45, IdleSpeed: 20, LoadTemp: 60, LoadSpeed: 90},
		},
		Control: []store.ControlConfig{{Name: "Ctrl", HardwareID: "control-1", Input: "Tgt", Active: true}},
	}
	g := FromConfig(cfg, hw.Hardware())

	var targetID Identifier
	for _, n := range g.Nodes() {
		if n.Kind == KindTarget {
			targetID = n.ID
			d := n.Data.(*TargetData)
			d.Hysteresis.Advance(context.Background(), true, false) // idle -> load
		}
	}
	n, _ := g.Get(targetID)
	if n.Data.(*TargetData).Hysteresis.State() != "load" {
		t.Fatal("setup: expected hysteresis in load before ApplyConfig")
	}

	// Re-apply the same configuration (unrelated edit elsewhere).
	g.ApplyConfig(cfg, hw.Hardware())

	for _, n := range g.Nodes() {
		if n.Kind == KindTarget {
			if got := n.Data.(*TargetData).Hysteresis.State(); got != "load" {
				t.Fatalf("hysteresis state after ApplyConfig = %s, want \"load\" preserved", got)
			}
		}
	}
}

func TestApplyConfigResetsNewlyNamedTarget(t *testing.T) {
	hw := fakeHardwareFor(t)
	cfg := &store.Config{
		Temp: []store.TempConfig{{Name: "T", HardwareID: "temp-1"}},
		Target: []store.TargetConfig{
			{Name: "Tgt", Input: "T", IdleTemp: 45, IdleSpeed: 20, LoadTemp: 60, LoadSpeed: 90},
		},
	}
	g := FromConfig(cfg, hw.Hardware())
	for _, n := range g.Nodes() {
		if n.Kind == KindTarget {
			n.Data.(*TargetData).Hysteresis.Advance(context.Background(), true, false)
		}
	}

	renamed := &store.Config{
		Temp: []store.TempConfig{{Name: "T", HardwareID: "temp-1"}},
		Target: []store.TargetConfig{
			{Name: "NewTgt", Input: "T", IdleTemp: 45, IdleSpeed: 20, LoadTemp: 60, LoadSpeed: 90},
		},
	}
	g.ApplyConfig(renamed, hw.Hardware())

	for _, n := range g.Nodes() {
		if n.Kind == KindTarget {
			if got := n.Data.(*TargetData).Hysteresis.State(); got != "idle" {
				t.Fatalf("hysteresis state for a newly-named target = %s, want \"idle\"", got)
			}
		}
	}
}

func TestRemoveNodeStripsDanglingInputs(t *testing.T) {
	hw := fakeHardwareFor(t)
	cfg := &store.Config{
		Temp: []store.TempConfig{{Name: "T", HardwareID: "temp-1"}},
		Linear: []store.LinearConfig{
			{Name: "Lin", Input: "T", MinTemp: 0, MinSpeed: 0, MaxTemp: 100, MaxSpeed: 100},
		},
	}
	g := FromConfig(cfg, hw.Hardware())

	var tempID Identifier
	var linearID Identifier
	for _, n := range g.Nodes() {
		switch n.Kind {
		case KindTemp:
			tempID = n.ID
		case KindLinear:
			linearID = n.ID
		}
	}

	if _, err := g.RemoveNode(tempID); err != nil {
		t.Fatalf("RemoveNode() error = %v", err)
	}

	n, ok := g.Get(linearID)
	if !ok {
		t.Fatal("linear node vanished")
	}
	if len(n.Inputs) != 0 {
		t.Fatalf("expected dangling input stripped, got %+v", n.Inputs)
	}
}
