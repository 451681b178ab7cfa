// SPDX-License-Identifier: BSD-3-Clause

// Package ipc provides the in-process message bus AppState's front-end
// surface is exposed over: an embedded NATS server reachable only
// through an in-process connection, never a network listener, plus the
// subject constants and micro.Service registration helpers used to wire
// handlers onto it.
package ipc
