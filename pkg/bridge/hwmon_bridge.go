// SPDX-License-Identifier: BSD-3-Clause

//go:build linux

package bridge

import (
	"context"
	"fmt"
	"sort"

	"github.com/gofancontrol/fancore/pkg/hwmon"
	"github.com/gofancontrol/fancore/pkg/log"
)

// autoEnableFallback is the pwmN_enable value most hwmon drivers treat
// as "let the chip's own automatic curve drive this channel". The
// convention is not universal (some chips define additional thermal
// cruise modes at 3/4/5), but 2 is the de facto standard used by the
// vast majority of Super I/O and GPU hwmon drivers.
const autoEnableFallback = 2

type controlState struct {
	devicePath    string
	index         int
	originalMode  int
	currentMode   int
	manualApplied bool
	lastPercent   int
}

type readOnlyState struct {
	kind       hwmon.Kind
	devicePath string
	index      int
	lastValue  int
}

// HwmonBridge is the Linux hwmon-backed implementation of Bridge.
type HwmonBridge struct {
	hw *Hardware

	controls []*controlState
	fans     []*readOnlyState
	temps    []*readOnlyState

	// index maps a dense InternalIndex to which of the three slices
	// above (and which offset within it) owns that handle.
	index []handleRef

	log interface {
		Warn(msg string, args ...any)
	}
}

type handleKind int

const (
	handleControl handleKind = iota
	handleFan
	handleTemp
)

type handleRef struct {
	kind   handleKind
	offset int
}

// New scans basePath (normally hwmon.DefaultHwmonPath) and builds a
// HwmonBridge from every temp/fan/pwm attribute it discovers. Items
// whose metadata cannot be read are skipped with a warning rather than
// failing the whole scan.
func New(ctx context.Context, basePath string) (*HwmonBridge, error) {
	logger := log.Get("bridge")

	attrsByDevice, nameByDevice, err := hwmon.ScanAll(ctx, basePath)
	if err != nil {
		return nil, newHardwareError(ErrPlatform, "new", err.Error())
	}

	devicePaths := make([]string, 0, len(attrsByDevice))
	for dp := range attrsByDevice {
		devicePaths = append(devicePaths, dp)
	}
	sort.Strings(devicePaths)

	b := &HwmonBridge{log: logger}
	hw := &Hardware{}

	for _, devicePath := range devicePaths {
		deviceName := nameByDevice[devicePath]
		for _, attr := range attrsByDevice[devicePath] {
			switch attr.Kind {
			case hwmon.KindPWM:
				enablePath := hwmon.EnablePath(devicePath, attr.Index)
				original, err := hwmon.ReadIntCtx(ctx, enablePath)
				if err != nil {
					logger.Warn("skipping pwm without readable enable file", "path", attr.Path, "error", err)
					continue
				}

				cs := &controlState{
					devicePath:   devicePath,
					index:        attr.Index,
					originalMode: original,
					currentMode:  original,
				}
				idx := uint32(len(b.index))
				b.controls = append(b.controls, cs)
				b.index = append(b.index, handleRef{kind: handleControl, offset: len(b.controls) - 1})

				item := HItem{
					Name:          attrLabel(attr.Label, deviceName, "fan", attr.Index),
					HardwareID:    fmt.Sprintf("%s-%s", deviceName, attr.Path[len(devicePath)+1:]),
					Info:          fmt.Sprintf("%s (%s)", deviceName, devicePath),
					InternalIndex: idx,
				}
				hw.Controls = append(hw.Controls, item)

			case hwmon.KindFan:
				rs := &readOnlyState{kind: hwmon.KindFan, devicePath: devicePath, index: attr.Index}
				idx := uint32(len(b.index))
				b.fans = append(b.fans, rs)
				b.index = append(b.index, handleRef{kind: handleFan, offset: len(b.fans) - 1})

				item := HItem{
					Name:          attrLabel(attr.Label, deviceName, "fan", attr.Index),
					HardwareID:    fmt.Sprintf("%s-%s", deviceName, attr.Path[len(devicePath)+1:]),
					Info:          fmt.Sprintf("%s (%s)", deviceName, devicePath),
					InternalIndex: idx,
				}
				hw.Fans = append(hw.Fans, item)

			case hwmon.KindTemp:
				rs := &readOnlyState{kind: hwmon.KindTemp, devicePath: devicePath, index: attr.Index}
				idx := uint32(len(b.index))
				b.temps = append(b.temps, rs)
				b.index = append(b.index, handleRef{kind: handleTemp, offset: len(b.temps) - 1})

				item := HItem{
					Name:          attrLabel(attr.Label, deviceName, "temp", attr.Index),
					HardwareID:    fmt.Sprintf("%s-%s", deviceName, attr.Path[len(devicePath)+1:]),
					Info:          fmt.Sprintf("%s (%s)", deviceName, devicePath),
					InternalIndex: idx,
				}
				hw.Temps = append(hw.Temps, item)
			}
		}
	}

	b.hw = hw
	return b, nil
}

func attrLabel(label, deviceName, kind string, index int) string {
	if label != "" {
		return label
	}
	return fmt.Sprintf("%s %s%d", deviceName, kind, index)
}

func (b *HwmonBridge) Hardware() *Hardware {
	return b.hw
}

func (b *HwmonBridge) resolve(internalIndex uint32) (handleRef, error) {
	if int(internalIndex) >= len(b.index) {
		return handleRef{}, newHardwareError(ErrInternalIndexNotFound, "resolve", fmt.Sprintf("index %d", internalIndex))
	}
	return b.index[internalIndex], nil
}

func (b *HwmonBridge) GetValue(ctx context.Context, internalIndex uint32) (int, error) {
	ref, err := b.resolve(internalIndex)
	if err != nil {
		return 0, err
	}

	switch ref.kind {
	case handleControl:
		cs := b.controls[ref.offset]
		return cs.lastPercent, nil
	case handleFan:
		return b.fans[ref.offset].lastValue, nil
	case handleTemp:
		return b.temps[ref.offset].lastValue, nil
	default:
		return 0, newHardwareError(ErrInvalidData, "get_value", "unknown handle kind")
	}
}

func (b *HwmonBridge) SetValue(ctx context.Context, internalIndex uint32, percent int) error {
	ref, err := b.resolve(internalIndex)
	if err != nil {
		return err
	}
	if ref.kind != handleControl {
		return newHardwareError(ErrWrongHardware, "set_value", "handle is not a control")
	}

	cs := b.controls[ref.offset]
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	raw := hwmon.PercentToPWM(percent)
	path := hwmon.AttributePath(cs.devicePath, hwmon.KindPWM, cs.index)
	if err := hwmon.WriteIntCtx(ctx, path, raw); err != nil {
		return newHardwareError(ErrPlatform, "set_value", err.Error())
	}

	cs.lastPercent = percent
	return nil
}

func (b *HwmonBridge) SetMode(ctx context.Context, internalIndex uint32, mode Mode) error {
	ref, err := b.resolve(internalIndex)
	if err != nil {
		return err
	}
	if ref.kind != handleControl {
		return newHardwareError(ErrWrongHardware, "set_mode", "handle is not a control")
	}

	cs := b.controls[ref.offset]
	target := cs.originalMode

	switch mode.Kind {
	case ModeManual:
		target = 1
	case ModeSpecific:
		target = mode.Value
	case ModeAuto:
		if cs.originalMode == 1 {
			target = autoEnableFallback
		} else {
			target = cs.originalMode
		}
	}

	enablePath := hwmon.EnablePath(cs.devicePath, cs.index)
	if err := hwmon.WriteIntCtx(ctx, enablePath, target); err != nil {
		return newHardwareError(ErrPlatform, "set_mode", err.Error())
	}

	cs.currentMode = target
	cs.manualApplied = mode.Kind == ModeManual
	return nil
}

// Update refreshes every fan and temp reading, and reads back each
// control's current duty cycle. Called once per tick before any
// GetValue.
func (b *HwmonBridge) Update(ctx context.Context) error {
	for _, rs := range b.fans {
		path := hwmon.AttributePath(rs.devicePath, hwmon.KindFan, rs.index)
		v, err := hwmon.ReadIntCtx(ctx, path)
		if err != nil {
			return newHardwareError(ErrPlatform, "update", err.Error())
		}
		rs.lastValue = v
	}

	for _, rs := range b.temps {
		path := hwmon.AttributePath(rs.devicePath, hwmon.KindTemp, rs.index)
		v, err := hwmon.ReadIntCtx(ctx, path)
		if err != nil {
			return newHardwareError(ErrPlatform, "update", err.Error())
		}
		rs.lastValue = hwmon.MilliCelsiusToCelsius(v)
	}

	for _, cs := range b.controls {
		path := hwmon.AttributePath(cs.devicePath, hwmon.KindPWM, cs.index)
		v, err := hwmon.ReadIntCtx(ctx, path)
		if err != nil {
			continue
		}
		cs.lastPercent = hwmon.PWMToPercent(v)
	}

	return nil
}

// Shutdown restores every control that was ever switched away from
// its startup enable value, best-effort: a failure on one control
// does not block restoring the rest.
func (b *HwmonBridge) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, cs := range b.controls {
		if cs.currentMode == cs.originalMode {
			continue
		}
		enablePath := hwmon.EnablePath(cs.devicePath, cs.index)
		if err := hwmon.WriteIntCtx(ctx, enablePath, cs.originalMode); err != nil {
			b.log.Warn("failed to restore control to its original mode", "path", enablePath, "error", err)
			if firstErr == nil {
				firstErr = newHardwareError(ErrPlatform, "shutdown", err.Error())
			}
			continue
		}
		cs.currentMode = cs.originalMode
	}
	return firstErr
}
