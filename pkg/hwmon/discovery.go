// SPDX-License-Identifier: BSD-3-Clause

package hwmon

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Attribute describes one discovered temp/fan/pwm file within a hwmon
// device directory.
type Attribute struct {
	Kind    Kind
	Index   int
	Path    string
	Label   string // from the optional *_label file, or "" if absent
	Writcan bool   // true for pwm* files, which are the only writable kind
}

var attrPattern = regexp.MustCompile(`^(temp|fan|pwm)(\d+)(_input)?$`)

// ScanDevice lists the temp/fan/pwm attributes exposed by a single hwmon
// device directory (e.g. /sys/class/hwmon/hwmon3), skipping any file
// whose metadata can't be read rather than failing the whole scan -
// matching the "scan with warnings, never fatal" rule for hardware
// access.
func ScanDevice(ctx context.Context, devicePath string) ([]Attribute, error) {
	names, err := ListAttributesCtx(ctx, devicePath, "")
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*Attribute)
	for _, name := range names {
		m := attrPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}

		var kind Kind
		switch m[1] {
		case "temp":
			kind = KindTemp
		case "fan":
			kind = KindFan
		case "pwm":
			kind = KindPWM
		default:
			continue
		}

		// pwm* has no _input suffix; temp/fan only count as discovered
		// once we see the _input variant, so a bare "temp1" without
		// "_input" present never turns into a phantom attribute.
		if kind != KindPWM && m[3] == "" {
			continue
		}

		index, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}

		key := fmt.Sprintf("%s%d", m[1], index)
		if _, ok := byKey[key]; ok {
			continue
		}

		path := devicePath + "/" + name
		label := ""
		if l, err := ReadStringCtx(ctx, LabelPath(devicePath, kind, index)); err == nil {
			label = l
		}

		byKey[key] = &Attribute{
			Kind:    kind,
			Index:   index,
			Path:    path,
			Label:   label,
			Writcan: kind == KindPWM,
		}
	}

	attrs := make([]Attribute, 0, len(byKey))
	for _, a := range byKey {
		attrs = append(attrs, *a)
	}
	sort.Slice(attrs, func(i, j int) bool {
		if attrs[i].Kind != attrs[j].Kind {
			return attrs[i].Kind < attrs[j].Kind
		}
		return attrs[i].Index < attrs[j].Index
	})
	return attrs, nil
}

// ScanAll lists every hwmon device under the given base path (normally
// DefaultHwmonPath) along with its discovered attributes and display
// name. A device whose "name" file can't be read is skipped with the
// caller expected to log a warning; ScanAll itself never fails solely
// because of one bad device.
func ScanAll(ctx context.Context, basePath string) (map[string][]Attribute, map[string]string, error) {
	devices, err := ListDevicesInPathCtx(ctx, basePath)
	if err != nil {
		return nil, nil, err
	}

	attrsByDevice := make(map[string][]Attribute, len(devices))
	nameByDevice := make(map[string]string, len(devices))

	for _, devicePath := range devices {
		name, err := ReadStringCtx(ctx, devicePath+"/name")
		if err != nil {
			continue
		}
		attrs, err := ScanDevice(ctx, devicePath)
		if err != nil {
			continue
		}
		nameByDevice[devicePath] = strings.TrimSpace(name)
		attrsByDevice[devicePath] = attrs
	}

	return attrsByDevice, nameByDevice, nil
}
