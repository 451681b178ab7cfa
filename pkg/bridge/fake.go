// SPDX-License-Identifier: BSD-3-Clause

package bridge

import "context"

// FakeControl seeds one control handle in a Fake bridge.
type FakeControl struct {
	Name         string
	HardwareID   string
	OriginalMode Mode
	InitialDuty  int
}

// FakeSensor seeds one read-only (fan or temp) handle in a Fake
// bridge.
type FakeSensor struct {
	Name         string
	HardwareID   string
	InitialValue int
}

// Fake is a deterministic, in-memory Bridge used by component tests.
// It never touches the filesystem; every read returns the value last
// set by the test via SetSensorValue, and every write is observable
// via WrittenValues/WrittenModes.
type Fake struct {
	hw *Hardware

	controlMode     []Mode
	controlOriginal []Mode
	controlDuty     []int
	fanValue        []int
	tempValue       []int

	writtenValues map[uint32][]int
	writtenModes  map[uint32][]Mode
	updateCalls   int
	shutdownCalls int

	// UpdateErr, if set, is returned by Update instead of succeeding.
	UpdateErr error
}

// NewFake builds a Fake bridge with the given seed controls, fans and
// temps, in that order of InternalIndex assignment (controls first).
func NewFake(controls []FakeControl, fans, temps []FakeSensor) *Fake {
	f := &Fake{
		writtenValues: make(map[uint32][]int),
		writtenModes:  make(map[uint32][]Mode),
	}

	hw := &Hardware{}
	var idx uint32

	for _, c := range controls {
		hw.Controls = append(hw.Controls, HItem{Name: c.Name, HardwareID: c.HardwareID, Info: "fake", InternalIndex: idx})
		f.controlMode = append(f.controlMode, c.OriginalMode)
		f.controlOriginal = append(f.controlOriginal, c.OriginalMode)
		f.controlDuty = append(f.controlDuty, c.InitialDuty)
		idx++
	}
	for _, s := range fans {
		hw.Fans = append(hw.Fans, HItem{Name: s.Name, HardwareID: s.HardwareID, Info: "fake", InternalIndex: idx})
		f.fanValue = append(f.fanValue, s.InitialValue)
		idx++
	}
	for _, s := range temps {
		hw.Temps = append(hw.Temps, HItem{Name: s.Name, HardwareID: s.HardwareID, Info: "fake", InternalIndex: idx})
		f.tempValue = append(f.tempValue, s.InitialValue)
		idx++
	}

	f.hw = hw
	return f
}

func (f *Fake) Hardware() *Hardware { return f.hw }

// kind reports which slot class an InternalIndex falls into and the
// offset within it.
func (f *Fake) kind(internalIndex uint32) (handleKind, int, bool) {
	nControls := len(f.hw.Controls)
	nFans := len(f.hw.Fans)
	i := int(internalIndex)
	switch {
	case i < nControls:
		return handleControl, i, true
	case i < nControls+nFans:
		return handleFan, i - nControls, true
	case i < nControls+nFans+len(f.hw.Temps):
		return handleTemp, i - nControls - nFans, true
	default:
		return 0, 0, false
	}
}

func (f *Fake) GetValue(ctx context.Context, internalIndex uint32) (int, error) {
	k, off, ok := f.kind(internalIndex)
	if !ok {
		return 0, newHardwareError(ErrInternalIndexNotFound, "get_value", "")
	}
	switch k {
	case handleControl:
		return f.controlDuty[off], nil
	case handleFan:
		return f.fanValue[off], nil
	case handleTemp:
		return f.tempValue[off], nil
	}
	return 0, newHardwareError(ErrInvalidData, "get_value", "")
}

func (f *Fake) SetValue(ctx context.Context, internalIndex uint32, percent int) error {
	k, off, ok := f.kind(internalIndex)
	if !ok {
		return newHardwareError(ErrInternalIndexNotFound, "set_value", "")
	}
	if k != handleControl {
		return newHardwareError(ErrWrongHardware, "set_value", "")
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	f.controlDuty[off] = percent
	f.writtenValues[internalIndex] = append(f.writtenValues[internalIndex], percent)
	return nil
}

func (f *Fake) SetMode(ctx context.Context, internalIndex uint32, mode Mode) error {
	k, off, ok := f.kind(internalIndex)
	if !ok {
		return newHardwareError(ErrInternalIndexNotFound, "set_mode", "")
	}
	if k != handleControl {
		return newHardwareError(ErrWrongHardware, "set_mode", "")
	}
	if mode.Kind == ModeAuto {
		f.controlMode[off] = f.controlOriginal[off]
	} else {
		f.controlMode[off] = mode
	}
	f.writtenModes[internalIndex] = append(f.writtenModes[internalIndex], mode)
	return nil
}

func (f *Fake) Update(ctx context.Context) error {
	f.updateCalls++
	return f.UpdateErr
}

func (f *Fake) Shutdown(ctx context.Context) error {
	f.shutdownCalls++
	for i := range f.controlMode {
		f.controlMode[i] = f.controlOriginal[i]
	}
	return nil
}

// SetSensorValue lets a test drive a fan or temp reading for the next
// Update/GetValue cycle. internalIndex must name a fan or temp handle;
// a control or unknown index is ignored. Tests typically take sensor
// internal indices from NewFake's Hardware().
func (f *Fake) SetSensorValue(internalIndex uint32, value int) {
	k, off, ok := f.kind(internalIndex)
	if !ok {
		return
	}
	switch k {
	case handleFan:
		f.fanValue[off] = value
	case handleTemp:
		f.tempValue[off] = value
	}
}

// ModeOf returns the current mode of a control, for test assertions.
func (f *Fake) ModeOf(internalIndex uint32) Mode {
	k, off, ok := f.kind(internalIndex)
	if !ok || k != handleControl {
		return Mode{}
	}
	return f.controlMode[off]
}

// UpdateCalls reports how many times Update has been invoked.
func (f *Fake) UpdateCalls() int { return f.updateCalls }

// ShutdownCalls reports how many times Shutdown has been invoked.
func (f *Fake) ShutdownCalls() int { return f.shutdownCalls }
