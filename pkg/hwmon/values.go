// SPDX-License-Identifier: BSD-3-Clause

package hwmon

import "fmt"

// Kind identifies which of the three hwmon attribute families a sensor
// or control file belongs to.
type Kind int

const (
	// KindTemp is a temp*_input file, reported in millidegree Celsius.
	KindTemp Kind = iota
	// KindFan is a fan*_input file, reported in RPM.
	KindFan
	// KindPWM is a pwm* file, a raw duty-cycle byte in [0,255].
	KindPWM
)

// String renders the Kind for log lines.
func (k Kind) String() string {
	switch k {
	case KindTemp:
		return "temp"
	case KindFan:
		return "fan"
	case KindPWM:
		return "pwm"
	default:
		return "unknown"
	}
}

// PWMScale is the platform-native upper bound for a duty-cycle byte;
// user-facing percentages in [0,100] are translated against it.
const PWMScale = 255

// PercentToPWM converts a user-facing duty-cycle percentage in [0,100]
// to the platform-native [0,255] range used by the pwm* sysfs files,
// rounding to the nearest integer and clamping at the endpoints.
func PercentToPWM(percent int) int {
	if percent <= 0 {
		return 0
	}
	if percent >= 100 {
		return PWMScale
	}
	// Round to nearest: (percent*255 + 50) / 100.
	return (percent*PWMScale + 50) / 100
}

// PWMToPercent converts a raw [0,255] duty-cycle byte back to a
// user-facing percentage in [0,100], rounding to the nearest integer.
func PWMToPercent(raw int) int {
	if raw <= 0 {
		return 0
	}
	if raw >= PWMScale {
		return 100
	}
	return (raw*100 + PWMScale/2) / PWMScale
}

// MilliCelsiusToCelsius converts a temp*_input reading (millidegree
// Celsius) to whole degrees Celsius, rounding toward nearest.
func MilliCelsiusToCelsius(milli int) int {
	if milli >= 0 {
		return (milli + 500) / 1000
	}
	return -((-milli + 500) / 1000)
}

func (k Kind) attributeSuffix() string {
	switch k {
	case KindTemp:
		return "_input"
	case KindFan:
		return "_input"
	case KindPWM:
		return ""
	default:
		return ""
	}
}

// AttributePath builds the sysfs path for the Nth attribute of the given
// kind inside a hwmon device directory, e.g. devicePath/pwm2 or
// devicePath/temp1_input.
func AttributePath(devicePath string, kind Kind, index int) string {
	prefix := kind.String()
	return fmt.Sprintf("%s/%s%d%s", devicePath, prefix, index, kind.attributeSuffix())
}

// EnablePath builds the sysfs path for a PWM channel's enable file
// (pwmN_enable), which selects the channel's control mode.
func EnablePath(devicePath string, index int) string {
	return fmt.Sprintf("%s/pwm%d_enable", devicePath, index)
}

// LabelPath builds the sysfs path for a sensor's optional human label
// file (e.g. temp1_label), used to produce HItem.Name when present.
func LabelPath(devicePath string, kind Kind, index int) string {
	return fmt.Sprintf("%s/%s%d_label", devicePath, kind.String(), index)
}
