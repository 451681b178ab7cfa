// SPDX-License-Identifier: BSD-3-Clause

package bridge

import "errors"

var (
	// ErrInternalIndexNotFound is returned when an operation names an
	// internal_index the bridge never assigned during its scan.
	ErrInternalIndexNotFound = errors.New("bridge: internal index not found")
	// ErrWrongHardware is returned when an operation valid only for
	// controls (set_value, set_mode) targets a fan or temp handle.
	ErrWrongHardware = errors.New("bridge: operation not valid for this hardware kind")
	// ErrInvalidData is returned when a platform file contains a value
	// the bridge cannot interpret.
	ErrInvalidData = errors.New("bridge: invalid data")
	// ErrPlatform wraps a lower-level platform/OS failure (I/O error,
	// permission, device removed).
	ErrPlatform = errors.New("bridge: platform error")
)
