// SPDX-License-Identifier: BSD-3-Clause

// Package graph implements AppGraph: the in-memory DAG of sensor,
// aggregator, behavior, and control nodes the Update Engine evaluates
// every tick. AppGraph is the single source of truth for node
// identity, validity, and topology; it is built once from a
// pkg/store.Config plus a pkg/bridge.Hardware description, and can be
// swapped in place when the user selects a different configuration.
package graph
