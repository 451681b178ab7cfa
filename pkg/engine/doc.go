// SPDX-License-Identifier: BSD-3-Clause

// Package engine implements the Update Engine: the per-tick evaluation
// of an AppGraph against a Hardware Bridge. Tick is a plain function,
// not a service - it runs to completion with no suspension points, so
// it can be driven by whatever timer the host (service/appstate) uses,
// and wrapped by whatever supervision that host chooses.
package engine
