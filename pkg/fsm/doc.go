// SPDX-License-Identifier: BSD-3-Clause

// Package fsm wraps qmuntal/stateless for the two small state machines
// the Update Engine needs per node: a Target node's idle/load
// hysteresis, and a Control node's auto/manual hardware mode. Each
// node owns its own machine directly; unlike a supervisory FSM
// manager, there is no shared registry or persistence layer here - the
// owning node already lives inside the AppGraph, which is the single
// source of truth.
package fsm
