// SPDX-License-Identifier: BSD-3-Clause

// Package appstate owns the Hardware Bridge, Configuration Store, and
// AppGraph for one running daemon instance, drives the Update Engine on
// a fixed cadence, and exposes the operations a front-end drives it
// through. AppState implements service.Service so it can be supervised
// the same way as every other long-running component; internally it
// runs its own small supervision tree over a tick-loop goroutine and an
// IPC handler-registration goroutine.
package appstate
