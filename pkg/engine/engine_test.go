// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"context"
	"testing"

	"github.com/gofancontrol/fancore/pkg/bridge"
	"github.com/gofancontrol/fancore/pkg/graph"
	"github.com/gofancontrol/fancore/pkg/store"
)

func newFakeHardware() *bridge.Fake {
	return bridge.NewFake(
		[]bridge.FakeControl{
			{Name: "Control 1", HardwareID: "control-1", OriginalMode: bridge.Mode{Kind: bridge.ModeAuto}, InitialDuty: 0},
		},
		[]bridge.FakeSensor{},
		[]bridge.FakeSensor{
			{Name: "Temp 1", HardwareID: "temp-1", InitialValue: 50},
			{Name: "Temp 2", HardwareID: "temp-2", InitialValue: 70},
		},
	)
}

func TestTickFlatForwarding(t *testing.T) {
	fake := newFakeHardware()
	cfg := &store.Config{
		Flat:    []store.FlatConfig{{Name: "Flat50", Value: 50}},
		Control: []store.ControlConfig{{Name: "Ctrl", HardwareID: "control-1", Input: "Flat50", Active: true}},
	}
	g := graph.FromConfig(cfg, fake.Hardware())

	Tick(context.Background(), g, fake, false)

	idx := fake.Hardware().Controls[0].InternalIndex
	got, err := fake.GetValue(context.Background(), idx)
	if err != nil {
		t.Fatalf("GetValue() error = %v", err)
	}
	if got != 50 {
		t.Fatalf("control duty = %d, want 50", got)
	}
}

func TestTickCustomTempAggregation(t *testing.T) {
	tests := []struct {
		name string
		agg  string
		want int
	}{
		{name: "min", agg: "Min", want: 50},
		{name: "max", agg: "Max", want: 70},
		{name: "average", agg: "Average", want: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeHardware()
			cfg := &store.Config{
				Temp: []store.TempConfig{
					{Name: "T1", HardwareID: "temp-1"},
					{Name: "T2", HardwareID: "temp-2"},
				},
				CustomTemp: []store.CustomTempConfig{
					{Name: "Custom", Kind: tt.agg, Input: []string{"T1", "T2"}},
				},
				Linear: []store.LinearConfig{
					{Name: "Lin", Input: "Custom", MinTemp: 0, MinSpeed: 0, MaxTemp: 100, MaxSpeed: 100},
				},
				Control: []store.ControlConfig{
					{Name: "Ctrl", HardwareID: "control-1", Input: "Lin", Active: true},
				},
			}
			g := graph.FromConfig(cfg, fake.Hardware())

			Tick(context.Background(), g, fake, false)

			idx := fake.Hardware().Controls[0].InternalIndex
			got, err := fake.GetValue(context.Background(), idx)
			if err != nil {
				t.Fatalf("GetValue() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("control duty = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTickTargetHysteresisSequence(t *testing.T) {
	fake := bridge.NewFake(
		[]bridge.FakeControl{{Name: "Ctrl", HardwareID: "control-1", OriginalMode: bridge.Mode{Kind: bridge.ModeAuto}}},
		nil,
		[]bridge.FakeSensor{{Name: "Temp", HardwareID: "temp-1", InitialValue: 40}},
	)
	cfg := &store.Config{
		Temp: []store.TempConfig{{Name: "T", HardwareID: "temp-1"}},
		Target: []store.TargetConfig{
			{Name: "Tgt", Input: "T", IdleTemp: 45, IdleSpeed: 20, LoadTemp: 60, LoadSpeed: 90},
		},
		Control: []store.ControlConfig{
			{Name: "Ctrl", HardwareID: "control-1", Input: "Tgt", Active: true},
		},
	}
	g := graph.FromConfig(cfg, fake.Hardware())
	ctx := context.Background()
	idx := fake.Hardware().Controls[0].InternalIndex
	tempIdx := fake.Hardware().Temps[0].InternalIndex

	Tick(ctx, g, fake, false)
	if got, _ := fake.GetValue(ctx, idx); got != 20 {
		t.Fatalf("initial duty = %d, want 20 (idle)", got)
	}

	fake.SetSensorValue(tempIdx, 50)
	Tick(ctx, g, fake, false)
	if got, _ := fake.GetValue(ctx, idx); got != 20 {
		t.Fatalf("duty at 50C (below load threshold) = %d, want 20 (still idle)", got)
	}

	fake.SetSensorValue(tempIdx, 65)
	Tick(ctx, g, fake, false)
	if got, _ := fake.GetValue(ctx, idx); got != 90 {
		t.Fatalf("duty at 65C = %d, want 90 (load)", got)
	}

	fake.SetSensorValue(tempIdx, 50)
	Tick(ctx, g, fake, false)
	if got, _ := fake.GetValue(ctx, idx); got != 90 {
		t.Fatalf("duty at 50C after load (above idle threshold) = %d, want 90 (still load)", got)
	}

	fake.SetSensorValue(tempIdx, 40)
	Tick(ctx, g, fake, false)
	if got, _ := fake.GetValue(ctx, idx); got != 20 {
		t.Fatalf("duty at 40C = %d, want 20 (idle again)", got)
	}
}

func TestTickHardwareDisappearancePreservesLastValue(t *testing.T) {
	fake := newFakeHardware()
	cfg := &store.Config{
		Flat:    []store.FlatConfig{{Name: "Flat50", Value: 50}},
		Control: []store.ControlConfig{{Name: "Ctrl", HardwareID: "control-1", Input: "Flat50", Active: true}},
	}
	g := graph.FromConfig(cfg, fake.Hardware())
	ctx := context.Background()

	Tick(ctx, g, fake, false)
	idx := fake.Hardware().Controls[0].InternalIndex
	before, _ := fake.GetValue(ctx, idx)

	fake.UpdateErr = context.DeadlineExceeded
	Tick(ctx, g, fake, false)

	after, _ := fake.GetValue(ctx, idx)
	if before != after {
		t.Fatalf("duty changed across a failed bridge update: before=%d after=%d", before, after)
	}
	if fake.UpdateCalls() != 2 {
		t.Fatalf("UpdateCalls() = %d, want 2", fake.UpdateCalls())
	}
}

func TestTickInactiveSkipsEvaluation(t *testing.T) {
	fake := newFakeHardware()
	cfg := &store.Config{
		Flat:    []store.FlatConfig{{Name: "Flat50", Value: 50}},
		Control: []store.ControlConfig{{Name: "Ctrl", HardwareID: "control-1", Input: "Flat50", Active: true}},
	}
	g := graph.FromConfig(cfg, fake.Hardware())

	Tick(context.Background(), g, fake, true)

	idx := fake.Hardware().Controls[0].InternalIndex
	got, _ := fake.GetValue(context.Background(), idx)
	if got != 0 {
		t.Fatalf("control duty = %d, want 0 (untouched while inactive)", got)
	}
}
