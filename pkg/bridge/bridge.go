// SPDX-License-Identifier: BSD-3-Clause

package bridge

import "context"

// Bridge is the platform-specific adapter the Update Engine drives
// once per tick. Implementations must be safe to call from a single
// goroutine only - the engine never calls a Bridge concurrently with
// itself, so implementations need not add their own locking for that
// case, though internal caches populated by Update must be read
// consistently by the Get/Set calls that follow it in the same tick.
type Bridge interface {
	// Hardware returns the description produced by the initial scan.
	// The returned value is stable for the lifetime of the bridge and
	// must not be mutated by the caller.
	Hardware() *Hardware

	// GetValue returns the most recent measurement for the given
	// handle: degrees Celsius for a Temp, RPM for a Fan, duty-cycle
	// percent in [0,100] read back for a Control.
	GetValue(ctx context.Context, internalIndex uint32) (int, error)

	// SetValue writes a duty-cycle percent to a Control handle. Values
	// outside [0,100] are clamped before being scaled to the
	// platform's native range. Returns WrongHardware for a Fan or Temp
	// handle.
	SetValue(ctx context.Context, internalIndex uint32, percent int) error

	// SetMode switches a Control's hardware operating mode. Returns
	// WrongHardware for a Fan or Temp handle.
	SetMode(ctx context.Context, internalIndex uint32, mode Mode) error

	// Update performs one batched refresh of cached readings. Called
	// exactly once per tick, before any GetValue call for that tick.
	Update(ctx context.Context) error

	// Shutdown restores every control the bridge ever switched out of
	// its startup mode, then releases the platform handle. Safe to
	// call more than once.
	Shutdown(ctx context.Context) error
}
