// SPDX-License-Identifier: BSD-3-Clause

// Package file provides crash-safe writes for the on-disk configuration
// store: every save goes through a temporary file in the destination
// directory followed by a rename, so a process killed mid-write never
// leaves a half-written settings.toml or <name>.toml behind.
package file
