// SPDX-License-Identifier: BSD-3-Clause

// Package lock enforces single-instance operation via an exclusive,
// non-blocking flock on a PID file, following the same
// temp-file-and-syscall style pkg/file uses for its own filesystem
// primitives.
package lock
