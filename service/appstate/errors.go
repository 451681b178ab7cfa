// SPDX-License-Identifier: BSD-3-Clause

package appstate

import "errors"

var (
	// ErrNotControl indicates an operation that requires a Control node
	// was given the id of a node of another kind.
	ErrNotControl = errors.New("node is not a control")
	// ErrAlreadyRunning indicates Run was called more than once on the
	// same AppState.
	ErrAlreadyRunning = errors.New("appstate already running")
	// ErrNotRunning indicates a front-end method was called before Run
	// finished initializing the bridge, store, and graph.
	ErrNotRunning = errors.New("appstate not running")
)
